package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aerovia/flight-booking/internal/model"
)

// SeatRepo manages the per-flight seat map.  A seat's status is only
// moved from AVAILABLE to BOOKED through MarkBookedTx, which is
// guarded by both the stored status and the version column.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// GetByFlightAndNumberTx reads one seat row within the provided
// transaction.  sql.ErrNoRows is returned for unknown seat numbers.
func (r *SeatRepo) GetByFlightAndNumberTx(ctx context.Context, tx *sql.Tx, flightID int64, seatNumber int) (*model.Seat, error) {
	const q = `SELECT flight_id, seat_number, seat_status, version
	           FROM seat_info
	           WHERE flight_id = ? AND seat_number = ?`
	var s model.Seat
	err := tx.QueryRowContext(ctx, q, flightID, seatNumber).Scan(
		&s.FlightID, &s.SeatNumber, &s.Status, &s.Version,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkBookedTx claims a seat with a conditional update: the row must
// still be AVAILABLE at the version the caller read.  The boolean
// reports whether the claim won; losing the race is not an error.
func (r *SeatRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, flightID int64, seatNumber int, version int64) (bool, error) {
	const q = `UPDATE seat_info
	           SET seat_status = ?, version = version + 1
	           WHERE flight_id = ? AND seat_number = ? AND seat_status = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, model.SeatBooked, flightID, seatNumber, model.SeatAvailable, version)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseTx puts a seat back to AVAILABLE unconditionally.  Used when
// a customer gives a seat up during reassignment.
func (r *SeatRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, flightID int64, seatNumber int) error {
	const q = `UPDATE seat_info
	           SET seat_status = ?, version = version + 1
	           WHERE flight_id = ? AND seat_number = ?`
	_, err := tx.ExecContext(ctx, q, model.SeatAvailable, flightID, seatNumber)
	return err
}

// AvailableNumbersTx lists seat numbers still open on a flight, in
// ascending order.
func (r *SeatRepo) AvailableNumbersTx(ctx context.Context, tx *sql.Tx, flightID int64) ([]int, error) {
	const q = `SELECT seat_number FROM seat_info
	           WHERE flight_id = ? AND seat_status = ?
	           ORDER BY seat_number`
	rows, err := tx.QueryContext(ctx, q, flightID, model.SeatAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	numbers := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return numbers, nil
}

// CreateMapTx bulk-inserts seats 1..capacity for a freshly provisioned
// flight, all AVAILABLE at version 1.
func (r *SeatRepo) CreateMapTx(ctx context.Context, tx *sql.Tx, flightID int64, capacity int) error {
	if capacity <= 0 {
		return nil
	}
	placeholders := make([]string, 0, capacity)
	args := make([]interface{}, 0, capacity*3)
	for n := 1; n <= capacity; n++ {
		placeholders = append(placeholders, "(?, ?, ?, 1)")
		args = append(args, flightID, n, model.SeatAvailable)
	}
	q := fmt.Sprintf(
		`INSERT INTO seat_info (flight_id, seat_number, seat_status, version) VALUES %s`,
		strings.Join(placeholders, ", "),
	)
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
