package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aerovia/flight-booking/internal/booking"
	"github.com/aerovia/flight-booking/internal/model"
)

// SQLStore adapts the MySQL repositories to the booking engine's
// transaction interface.  It translates sql.ErrNoRows into the
// engine's lookup sentinels; conditional-write misses pass through as
// plain false returns.
type SQLStore struct {
	db      *sql.DB
	flights *FlightRepo
	seats   *SeatRepo
	tickets *TicketRepo
}

// NewSQLStore builds a store over the given repositories.  All three
// must share the same *sql.DB.
func NewSQLStore(db *sql.DB, flights *FlightRepo, seats *SeatRepo, tickets *TicketRepo) *SQLStore {
	return &SQLStore{db: db, flights: flights, seats: seats, tickets: tickets}
}

// Begin opens a database transaction for one booking operation.
// READ COMMITTED matters here: the retry loop re-reads a contested row
// after losing a conditional write, and under REPEATABLE READ those
// re-reads would keep serving the transaction's opening snapshot.  The
// stale version could then never match the committed row again and
// every retry would lose.  Per-statement snapshots keep the
// read-validate-write cycle honest.
func (s *SQLStore) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, store: s}, nil
}

type sqlTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

func (t *sqlTx) FlightByNumberAndDate(ctx context.Context, number int, date time.Time) (*model.Flight, error) {
	f, err := t.store.flights.GetByNumberAndDateTx(ctx, t.tx, number, date)
	if err == sql.ErrNoRows {
		return nil, booking.ErrFlightNotFound
	}
	return f, err
}

func (t *sqlTx) DecrementAvailableTickets(ctx context.Context, flightID, version int64) (bool, error) {
	return t.store.flights.DecrementTicketsTx(ctx, t.tx, flightID, version)
}

func (t *sqlTx) TicketByCustomerAndFlight(ctx context.Context, customerID, flightID int64) (*model.Ticket, error) {
	tk, err := t.store.tickets.GetByCustomerAndFlightTx(ctx, t.tx, customerID, flightID)
	if err == sql.ErrNoRows {
		return nil, booking.ErrTicketNotFound
	}
	return tk, err
}

func (t *sqlTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	return t.store.tickets.InsertTx(ctx, t.tx, tk)
}

func (t *sqlTx) SetTicketSeat(ctx context.Context, ticketID int64, seatNumber *int) error {
	return t.store.tickets.SetSeatTx(ctx, t.tx, ticketID, seatNumber)
}

func (t *sqlTx) SeatByFlightAndNumber(ctx context.Context, flightID int64, seatNumber int) (*model.Seat, error) {
	s, err := t.store.seats.GetByFlightAndNumberTx(ctx, t.tx, flightID, seatNumber)
	if err == sql.ErrNoRows {
		return nil, booking.ErrSeatNotFound
	}
	return s, err
}

func (t *sqlTx) MarkSeatBooked(ctx context.Context, flightID int64, seatNumber int, version int64) (bool, error) {
	return t.store.seats.MarkBookedTx(ctx, t.tx, flightID, seatNumber, version)
}

func (t *sqlTx) ReleaseSeat(ctx context.Context, flightID int64, seatNumber int) error {
	return t.store.seats.ReleaseTx(ctx, t.tx, flightID, seatNumber)
}

func (t *sqlTx) AvailableSeatNumbers(ctx context.Context, flightID int64) ([]int, error) {
	return t.store.seats.AvailableNumbersTx(ctx, t.tx, flightID)
}
