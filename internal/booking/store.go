package booking

import (
	"context"
	"time"

	"github.com/aerovia/flight-booking/internal/model"
)

// Store opens transactions against the booking records.  The MySQL
// implementation lives in the repository package; tests substitute an
// in-memory store with the same conditional-write semantics.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one transaction over flights, seats and tickets.  Reads return
// current row state together with its version token; conditional
// writes report whether a row was affected.  A false return from a
// conditional write means another writer committed between the read
// and the write.  That is the normal contention signal, never an
// error.
//
// Lookup methods return ErrFlightNotFound, ErrSeatNotFound or
// ErrTicketNotFound when no row matches.  Any other error is a store
// failure and aborts the calling operation.
type Tx interface {
	Commit() error
	Rollback() error

	// FlightByNumberAndDate reads a flight row including its
	// remaining-ticket count and version.
	FlightByNumberAndDate(ctx context.Context, number int, date time.Time) (*model.Flight, error)

	// DecrementAvailableTickets subtracts one ticket and bumps the
	// version, guarded by the version the caller read.  It reports
	// false when the guard no longer matches.
	DecrementAvailableTickets(ctx context.Context, flightID, version int64) (bool, error)

	// TicketByCustomerAndFlight finds the customer's ticket on a
	// flight, used as the duplicate-booking guard and by seat
	// reassignment.
	TicketByCustomerAndFlight(ctx context.Context, customerID, flightID int64) (*model.Ticket, error)

	// InsertTicket creates a ticket row and populates its ID.  The
	// store's unique key on (customer, flight) backstops the
	// duplicate guard.
	InsertTicket(ctx context.Context, t *model.Ticket) error

	// SetTicketSeat binds a seat number to a ticket, or clears the
	// binding when seatNumber is nil.
	SetTicketSeat(ctx context.Context, ticketID int64, seatNumber *int) error

	// SeatByFlightAndNumber reads a seat row with its status and
	// version.
	SeatByFlightAndNumber(ctx context.Context, flightID int64, seatNumber int) (*model.Seat, error)

	// MarkSeatBooked flips a seat from AVAILABLE to BOOKED, guarded
	// by both the status value and the version the caller read.  It
	// reports false when the guard no longer matches.
	MarkSeatBooked(ctx context.Context, flightID int64, seatNumber int, version int64) (bool, error)

	// ReleaseSeat returns a BOOKED seat to AVAILABLE, bumping its
	// version.
	ReleaseSeat(ctx context.Context, flightID int64, seatNumber int) error

	// AvailableSeatNumbers lists seat numbers currently AVAILABLE on
	// a flight, in ascending order.
	AvailableSeatNumbers(ctx context.Context, flightID int64) ([]int, error)
}

// Leg is one flight within a booking intent: a flight number, a
// departure date and an optional preferred seat.
type Leg struct {
	FlightNumber  int       `json:"flight_number"`
	FlightDate    time.Time `json:"flight_date"`
	PreferredSeat *int      `json:"preferred_seat,omitempty"`
}

// Confirmation is the per-leg result of a successful booking.
type Confirmation struct {
	TicketID      int64  `json:"ticket_id"`
	FlightDetails string `json:"flight_details"`
	SeatNumber    *int   `json:"seat_number,omitempty"`
}

// Result is the outcome of a whole booking intent.  SeatMiss is set
// when at least one preferred seat could not be claimed; the booking
// itself still stands.
type Result struct {
	Confirmations []Confirmation
	SeatMiss      bool
}
