package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aerovia/flight-booking/internal/model"
)

// TicketRepo manages booked tickets.  The table carries a unique key
// on (customer_id, flight_id), so the duplicate-booking rule is
// enforced by the schema as well as by the pre-insert check.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// GetByCustomerAndFlightTx reads the customer's ticket on a flight
// within the provided transaction.  sql.ErrNoRows means the customer
// holds no ticket there yet.
func (r *TicketRepo) GetByCustomerAndFlightTx(ctx context.Context, tx *sql.Tx, customerID, flightID int64) (*model.Ticket, error) {
	const q = `SELECT ticket_id, customer_id, flight_id, flight_number, flight_date, seat_number
	           FROM ticket
	           WHERE customer_id = ? AND flight_id = ?`
	var t model.Ticket
	err := tx.QueryRowContext(ctx, q, customerID, flightID).Scan(
		&t.ID, &t.CustomerID, &t.FlightID, &t.FlightNumber, &t.FlightDate, &t.SeatNumber,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTx creates a ticket row and fills in its generated id.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO ticket (customer_id, flight_id, flight_number, flight_date, seat_number)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		t.CustomerID, t.FlightID, t.FlightNumber, t.FlightDate.Format("2006-01-02"), t.SeatNumber,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// SetSeatTx records the seat attached to a ticket; a nil seat number
// clears the reference.
func (r *TicketRepo) SetSeatTx(ctx context.Context, tx *sql.Tx, ticketID int64, seatNumber *int) error {
	const q = `UPDATE ticket SET seat_number = ? WHERE ticket_id = ?`
	_, err := tx.ExecContext(ctx, q, seatNumber, ticketID)
	return err
}

// HistoryByCustomer lists everything the customer ever booked, newest
// flight first, joined with route details.
func (r *TicketRepo) HistoryByCustomer(ctx context.Context, customerID int64) ([]model.BookingHistoryEntry, error) {
	const q = `SELECT t.ticket_id, t.flight_number, t.flight_date,
	                  fr.departure_city, fr.destination_city,
	                  fr.departure_time, fr.arrival_time, t.seat_number
	           FROM ticket t
	           JOIN flight_route fr ON t.flight_number = fr.flight_number
	           WHERE t.customer_id = ?
	           ORDER BY t.flight_date DESC, t.flight_number`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.BookingHistoryEntry, 0)
	for rows.Next() {
		var (
			e    model.BookingHistoryEntry
			seat sql.NullInt64
		)
		if err := rows.Scan(
			&e.TicketID, &e.FlightNumber, &e.FlightDate,
			&e.DepartureCity, &e.DestinationCity,
			&e.DepartureTime, &e.ArrivalTime, &seat,
		); err != nil {
			return nil, err
		}
		if seat.Valid {
			e.SeatNumber = fmt.Sprintf("%d", seat.Int64)
		} else {
			e.SeatNumber = "Not Selected"
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
