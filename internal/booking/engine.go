package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/aerovia/flight-booking/internal/model"
)

// DefaultMaxAttempts bounds the conditional-write retry loop when no
// explicit limit is configured.  The bound caps latency and CPU burn
// when many requests race for one remaining slot; it is not a
// correctness knob.
const DefaultMaxAttempts = 5

// retry sleeps between 1 and 50 milliseconds, mirroring the jittered
// backoff the booking path has always used to spread competing writers
// apart after a lost conditional write.
const (
	retrySleepMin = time.Millisecond
	retrySleepMax = 50 * time.Millisecond
)

// Engine drives bookings against a Store.  It keeps no state between
// calls: every decision is made from a fresh read inside the active
// transaction, which is what makes the optimistic scheme sound.
type Engine struct {
	store       Store
	maxAttempts int
}

// New constructs an Engine.  maxAttempts caps the per-resource retry
// loop; values below 1 fall back to DefaultMaxAttempts.
func New(store Store, maxAttempts int) *Engine {
	if store == nil {
		panic("nil store passed to booking.New")
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{store: store, maxAttempts: maxAttempts}
}

// Book books every leg of the intent for one customer as a single
// atomic unit.  Legs are processed in order inside one store
// transaction; a fatal failure on any leg (unknown flight, duplicate
// ticket, ticket slots exhausted) rolls back everything booked so far
// in this call.  A preferred seat that cannot be claimed is non-fatal:
// the leg's ticket stands without a seat and Result.SeatMiss is set.
func (e *Engine) Book(ctx context.Context, customerID int64, legs []Leg) (*Result, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: no legs in booking intent", ErrValidation)
	}
	for _, leg := range legs {
		if leg.FlightNumber <= 0 || leg.FlightDate.IsZero() {
			return nil, fmt.Errorf("%w: flight number and date are required", ErrValidation)
		}
		if leg.PreferredSeat != nil && *leg.PreferredSeat <= 0 {
			return nil, fmt.Errorf("%w: seat number must be positive", ErrValidation)
		}
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res := &Result{Confirmations: make([]Confirmation, 0, len(legs))}
	for _, leg := range legs {
		conf, seatMiss, err := e.bookLeg(ctx, tx, customerID, leg)
		if err != nil {
			return nil, err
		}
		if seatMiss {
			res.SeatMiss = true
		}
		res.Confirmations = append(res.Confirmations, *conf)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}
	committed = true
	return res, nil
}

// bookLeg secures one ticket slot and optionally one seat for a single
// leg.  All writes happen on the caller's transaction so the
// orchestrator's rollback covers them.
func (e *Engine) bookLeg(ctx context.Context, tx Tx, customerID int64, leg Leg) (*Confirmation, bool, error) {
	flight, err := tx.FlightByNumberAndDate(ctx, leg.FlightNumber, leg.FlightDate)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			return nil, false, fmt.Errorf("flight %d on %s: %w",
				leg.FlightNumber, leg.FlightDate.Format("2006-01-02"), ErrFlightNotFound)
		}
		return nil, false, fmt.Errorf("look up flight: %w", err)
	}

	// Duplicate-booking guard: one ticket per (customer, flight).
	if _, err := tx.TicketByCustomerAndFlight(ctx, customerID, flight.ID); err == nil {
		return nil, false, fmt.Errorf("flight %d on %s: %w",
			leg.FlightNumber, leg.FlightDate.Format("2006-01-02"), ErrDuplicateBooking)
	} else if !errors.Is(err, ErrTicketNotFound) {
		return nil, false, fmt.Errorf("check existing ticket: %w", err)
	}

	if err := e.acquireTicketSlot(ctx, tx, flight); err != nil {
		return nil, false, err
	}

	ticket := &model.Ticket{
		CustomerID:   customerID,
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		FlightDate:   flight.FlightDate,
	}
	if err := tx.InsertTicket(ctx, ticket); err != nil {
		return nil, false, fmt.Errorf("insert ticket: %w", err)
	}

	conf := &Confirmation{
		TicketID: ticket.ID,
		FlightDetails: fmt.Sprintf("Flight %d on %s",
			flight.FlightNumber, flight.FlightDate.Format("2006-01-02")),
	}
	if leg.PreferredSeat == nil {
		return conf, false, nil
	}

	// The ticket is booked regardless of whether the preferred seat
	// can be claimed; a seat miss never aborts the leg.
	if err := e.claimSeat(ctx, tx, flight.ID, *leg.PreferredSeat); err != nil {
		if errors.Is(err, ErrExhausted) || errors.Is(err, ErrSeatNotFound) {
			return conf, true, nil
		}
		return nil, false, err
	}
	if err := tx.SetTicketSeat(ctx, ticket.ID, leg.PreferredSeat); err != nil {
		return nil, false, fmt.Errorf("bind seat to ticket: %w", err)
	}
	conf.SeatNumber = leg.PreferredSeat
	return conf, false, nil
}

// acquireTicketSlot decrements the flight's remaining-ticket counter
// with a bounded read-validate-write loop.  A counter already at zero
// is hard unavailability and fails fast; a conditional write that
// affects no row means another writer won the race, so the loop
// re-reads fresh state and tries again up to the attempt ceiling.
func (e *Engine) acquireTicketSlot(ctx context.Context, tx Tx, flight *model.Flight) error {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepJitter(ctx); err != nil {
				return err
			}
			fresh, err := tx.FlightByNumberAndDate(ctx, flight.FlightNumber, flight.FlightDate)
			if err != nil {
				return fmt.Errorf("re-read flight: %w", err)
			}
			*flight = *fresh
		}
		if flight.AvailableTickets <= 0 {
			return fmt.Errorf("flight %d is fully booked: %w", flight.FlightNumber, ErrExhausted)
		}
		ok, err := tx.DecrementAvailableTickets(ctx, flight.ID, flight.Version)
		if err != nil {
			return fmt.Errorf("decrement tickets: %w", err)
		}
		if ok {
			flight.AvailableTickets--
			flight.Version++
			return nil
		}
		// Lost the race; loop around for a fresh read.
	}
	return fmt.Errorf("flight %d under contention: %w", flight.FlightNumber, ErrExhausted)
}

// claimSeat flips one seat from AVAILABLE to BOOKED with the same
// bounded loop, using the seat's status plus version as the
// conditional-write guard.  A seat that reads BOOKED or UNAVAILABLE
// is hard unavailability.
func (e *Engine) claimSeat(ctx context.Context, tx Tx, flightID int64, seatNumber int) error {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepJitter(ctx); err != nil {
				return err
			}
		}
		seat, err := tx.SeatByFlightAndNumber(ctx, flightID, seatNumber)
		if err != nil {
			if errors.Is(err, ErrSeatNotFound) {
				return fmt.Errorf("seat %d: %w", seatNumber, ErrSeatNotFound)
			}
			return fmt.Errorf("read seat: %w", err)
		}
		switch seat.Status {
		case model.SeatAvailable:
		case model.SeatUnavailable:
			return fmt.Errorf("seat %d is blocked: %w", seatNumber, ErrExhausted)
		default:
			return fmt.Errorf("seat %d is taken: %w", seatNumber, ErrExhausted)
		}
		ok, err := tx.MarkSeatBooked(ctx, flightID, seatNumber, seat.Version)
		if err != nil {
			return fmt.Errorf("mark seat booked: %w", err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("seat %d under contention: %w", seatNumber, ErrExhausted)
}

// ReassignSeat changes or first-assigns the seat bound to an existing
// ticket.  The old seat is released before the new claim is attempted,
// so a failed claim leaves the customer seatless rather than holding
// two seats; the release is committed on its own for the same reason.
func (e *Engine) ReassignSeat(ctx context.Context, customerID int64, flightNumber int, date time.Time, seatNumber int) error {
	if flightNumber <= 0 || date.IsZero() || seatNumber <= 0 {
		return fmt.Errorf("%w: flight, date and seat number are required", ErrValidation)
	}

	ticket, flightID, err := e.releaseCurrentSeat(ctx, customerID, flightNumber, date, seatNumber)
	if err != nil {
		return err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin claim transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := e.claimSeat(ctx, tx, flightID, seatNumber); err != nil {
		return err
	}
	if err := tx.SetTicketSeat(ctx, ticket.ID, &seatNumber); err != nil {
		return fmt.Errorf("bind seat to ticket: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit claim transaction: %w", err)
	}
	committed = true
	return nil
}

// releaseCurrentSeat validates the reassignment target and frees the
// ticket's current seat, if any, in its own committed transaction.  It
// returns the ticket and the flight ID for the follow-up claim.
func (e *Engine) releaseCurrentSeat(ctx context.Context, customerID int64, flightNumber int, date time.Time, seatNumber int) (*model.Ticket, int64, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin release transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	flight, err := tx.FlightByNumberAndDate(ctx, flightNumber, date)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			return nil, 0, fmt.Errorf("flight %d on %s: %w",
				flightNumber, date.Format("2006-01-02"), ErrFlightNotFound)
		}
		return nil, 0, fmt.Errorf("look up flight: %w", err)
	}
	ticket, err := tx.TicketByCustomerAndFlight(ctx, customerID, flight.ID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, 0, fmt.Errorf("no ticket on flight %d: %w", flightNumber, ErrTicketNotFound)
		}
		return nil, 0, fmt.Errorf("look up ticket: %w", err)
	}
	// Ensure the target exists before giving anything up.
	if _, err := tx.SeatByFlightAndNumber(ctx, flight.ID, seatNumber); err != nil {
		if errors.Is(err, ErrSeatNotFound) {
			return nil, 0, fmt.Errorf("seat %d: %w", seatNumber, ErrSeatNotFound)
		}
		return nil, 0, fmt.Errorf("read seat: %w", err)
	}
	if ticket.SeatNumber != nil && *ticket.SeatNumber == seatNumber {
		return nil, 0, fmt.Errorf("%w: seat %d is already assigned to this ticket", ErrValidation, seatNumber)
	}

	if ticket.SeatNumber != nil {
		if err := tx.ReleaseSeat(ctx, flight.ID, *ticket.SeatNumber); err != nil {
			return nil, 0, fmt.Errorf("release seat %d: %w", *ticket.SeatNumber, err)
		}
		if err := tx.SetTicketSeat(ctx, ticket.ID, nil); err != nil {
			return nil, 0, fmt.Errorf("clear ticket seat: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit release transaction: %w", err)
	}
	committed = true
	return ticket, flight.ID, nil
}

// AvailableSeats lists the seat numbers still AVAILABLE on a flight.
func (e *Engine) AvailableSeats(ctx context.Context, flightNumber int, date time.Time) ([]int, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	flight, err := tx.FlightByNumberAndDate(ctx, flightNumber, date)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			return nil, fmt.Errorf("flight %d on %s: %w",
				flightNumber, date.Format("2006-01-02"), ErrFlightNotFound)
		}
		return nil, fmt.Errorf("look up flight: %w", err)
	}
	seats, err := tx.AvailableSeatNumbers(ctx, flight.ID)
	if err != nil {
		return nil, fmt.Errorf("list available seats: %w", err)
	}
	return seats, nil
}

// sleepJitter pauses for a random 1-50ms before a retry so competing
// writers fan out instead of colliding again immediately.
func sleepJitter(ctx context.Context) error {
	d := retrySleepMin + time.Duration(rand.Int63n(int64(retrySleepMax-retrySleepMin)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
