package repository

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/aerovia/flight-booking/internal/model"
)

// FlightRepo provides access to flight routes and dated flight
// instances.  The remaining-ticket counter on a flight row is only
// ever mutated through DecrementTicketsTx, which is guarded by the
// row's version column.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// GetByNumberAndDateTx reads one flight row, including its counter and
// version, within the provided transaction.  sql.ErrNoRows is returned
// when the (number, date) pair is not provisioned.
func (r *FlightRepo) GetByNumberAndDateTx(ctx context.Context, tx *sql.Tx, number int, date time.Time) (*model.Flight, error) {
	const q = `SELECT flight_id, flight_number, flight_date, available_tickets, version
	           FROM flight
	           WHERE flight_number = ? AND flight_date = ?`
	var f model.Flight
	err := tx.QueryRowContext(ctx, q, number, date.Format("2006-01-02")).Scan(
		&f.ID, &f.FlightNumber, &f.FlightDate, &f.AvailableTickets, &f.Version,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DecrementTicketsTx subtracts one available ticket and bumps the
// version, conditional on the version still matching the value the
// caller read.  The boolean reports whether a row was affected; zero
// affected rows means another writer committed first and is not an
// error.
func (r *FlightRepo) DecrementTicketsTx(ctx context.Context, tx *sql.Tx, flightID, version int64) (bool, error) {
	const q = `UPDATE flight
	           SET available_tickets = available_tickets - 1,
	               version = version + 1
	           WHERE flight_id = ? AND version = ? AND available_tickets > 0`
	res, err := tx.ExecContext(ctx, q, flightID, version)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Search returns flights joined with their route details for the given
// city pair, restricted to a single date or an inclusive date range,
// and only flights with tickets remaining.
func (r *FlightRepo) Search(ctx context.Context, departureCity, destinationCity string, from time.Time, to *time.Time) ([]model.FlightDetail, error) {
	q := `SELECT f.flight_id, f.flight_number, fr.departure_city, fr.destination_city,
	             fr.departure_time, fr.arrival_time, f.available_tickets, f.flight_date
	      FROM flight f
	      JOIN flight_route fr ON f.flight_number = fr.flight_number
	      WHERE fr.departure_city = ? AND fr.destination_city = ?
	      AND f.available_tickets > 0`
	args := []interface{}{departureCity, destinationCity}
	if to != nil {
		q += ` AND f.flight_date BETWEEN ? AND ?`
		args = append(args, from.Format("2006-01-02"), to.Format("2006-01-02"))
	} else {
		q += ` AND f.flight_date = ?`
		args = append(args, from.Format("2006-01-02"))
	}
	q += ` ORDER BY f.flight_date, f.flight_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	flights := make([]model.FlightDetail, 0)
	for rows.Next() {
		var d model.FlightDetail
		if err := rows.Scan(
			&d.ID, &d.FlightNumber, &d.DepartureCity, &d.DestinationCity,
			&d.DepartureTime, &d.ArrivalTime, &d.AvailableTickets, &d.FlightDate,
		); err != nil {
			return nil, err
		}
		flights = append(flights, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flights, nil
}

// ProvisionRoute inserts a flight route and one flight instance per day
// of its operating window, pre-seeding a full seat map per the
// aircraft capacity.  The sellable ticket count is the capacity
// inflated by the route's overbooking factor.  Everything happens in
// one transaction; the number of flight instances created is returned.
func (r *FlightRepo) ProvisionRoute(ctx context.Context, route *model.FlightRoute, seats *SeatRepo) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM aircraft WHERE aircraft_id = ?`, route.AircraftID,
	).Scan(&capacity)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAircraftNotFound
		}
		return 0, err
	}
	availableTickets := int(math.Ceil(float64(capacity) * (1 + route.Overbooking)))

	var endDate interface{}
	if route.EndDate != nil {
		endDate = route.EndDate.Format("2006-01-02")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO flight_route
		 (flight_number, departure_city, destination_city, departure_time, arrival_time,
		  aircraft_id, overbooking, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		route.FlightNumber, route.DepartureCity, route.DestinationCity,
		route.DepartureTime, route.ArrivalTime, route.AircraftID, route.Overbooking,
		route.StartDate.Format("2006-01-02"), endDate,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrRouteExists
		}
		return 0, err
	}

	// One flight per day of the window; open-ended routes get only
	// their start day and are extended by later provisioning runs.
	last := route.StartDate
	if route.EndDate != nil {
		last = *route.EndDate
	}
	created := 0
	for day := route.StartDate; !day.After(last); day = day.AddDate(0, 0, 1) {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO flight (flight_number, flight_date, available_tickets, version)
			 VALUES (?, ?, ?, 1)`,
			route.FlightNumber, day.Format("2006-01-02"), availableTickets,
		)
		if err != nil {
			return 0, err
		}
		flightID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		if err := seats.CreateMapTx(ctx, tx, flightID, capacity); err != nil {
			return 0, err
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return created, nil
}
