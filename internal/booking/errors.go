// Package booking implements the optimistic concurrency-control core of
// the booking system: bounded-retry compare-and-swap acquisition of
// ticket slots and seats, multi-leg orchestration inside one store
// transaction, and seat reassignment.
package booking

import "errors"

// Sentinel errors returned by the engine and by Tx implementations.
// Handlers translate these into HTTP responses; everything else that
// surfaces from a Tx is a store failure and maps to a 500.
var (
	// ErrFlightNotFound means the (flight number, date) pair does not
	// resolve to a provisioned flight.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrSeatNotFound means the requested seat number does not exist
	// on the flight's seat map.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrTicketNotFound means the customer holds no ticket for the
	// flight (seat reassignment requires one).
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrDuplicateBooking means the customer already holds a ticket
	// for the flight; re-booking is rejected, never duplicated.
	ErrDuplicateBooking = errors.New("flight already booked by customer")

	// ErrExhausted means a contested resource had no remaining
	// capacity, whether discovered on the first read or after the
	// bounded retry loop gave up under contention.  Callers cannot
	// tell the two cases apart.
	ErrExhausted = errors.New("no tickets or seats remaining")

	// ErrValidation means the request itself was malformed (bad leg,
	// non-positive seat number, reclaiming the seat already held).
	ErrValidation = errors.New("invalid booking request")
)
