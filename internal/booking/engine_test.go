package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerovia/flight-booking/internal/model"
)

var testDate = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

func seatPtr(n int) *int { return &n }

func TestBookSingleLegWithPreferredSeat(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)

	res, err := engine.Book(context.Background(), 1, []Leg{
		{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(3)},
	})
	require.NoError(t, err)
	require.Len(t, res.Confirmations, 1)

	conf := res.Confirmations[0]
	assert.False(t, res.SeatMiss)
	assert.NotZero(t, conf.TicketID)
	assert.Equal(t, "Flight 101 on 2026-09-10", conf.FlightDetails)
	require.NotNil(t, conf.SeatNumber)
	assert.Equal(t, 3, *conf.SeatNumber)

	assert.Equal(t, 9, store.remainingTickets(flightID))
	assert.Equal(t, model.SeatBooked, store.seatStatus(flightID, 3))

	ticket := store.ticketFor(1, flightID)
	require.NotNil(t, ticket)
	require.NotNil(t, ticket.SeatNumber)
	assert.Equal(t, 3, *ticket.SeatNumber)
}

func TestBookUnknownFlightRejectsIntent(t *testing.T) {
	engine := New(newMemStore(), 0)
	_, err := engine.Book(context.Background(), 1, []Leg{
		{FlightNumber: 999, FlightDate: testDate},
	})
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestBookValidatesLegs(t *testing.T) {
	engine := New(newMemStore(), 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = engine.Book(ctx, 1, []Leg{{FlightNumber: 0, FlightDate: testDate}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(-2)}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookSameFlightTwiceIsRejected(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 0)
	engine := New(store, 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate}})
	require.NoError(t, err)

	_, err = engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate}})
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	// The rejected attempt changed nothing.
	assert.Equal(t, 9, store.remainingTickets(flightID))
	assert.Equal(t, 1, store.ticketCount())
}

func TestBookPreferredSeatMissIsNonFatal(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	store.setSeatStatus(flightID, 2, model.SeatBooked)
	engine := New(store, 0)

	res, err := engine.Book(context.Background(), 1, []Leg{
		{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(2)},
	})
	require.NoError(t, err)
	require.Len(t, res.Confirmations, 1)
	assert.True(t, res.SeatMiss)
	assert.Nil(t, res.Confirmations[0].SeatNumber)

	// The ticket itself was still secured.
	assert.Equal(t, 9, store.remainingTickets(flightID))
	require.NotNil(t, store.ticketFor(1, flightID))
}

func TestBookUnavailableSeatIsNonFatal(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	store.setSeatStatus(flightID, 4, model.SeatUnavailable)
	engine := New(store, 0)

	res, err := engine.Book(context.Background(), 1, []Leg{
		{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(4)},
	})
	require.NoError(t, err)
	assert.True(t, res.SeatMiss)
	assert.Equal(t, model.SeatUnavailable, store.seatStatus(flightID, 4))
}

func TestMultiLegBookingIsAllOrNothing(t *testing.T) {
	store := newMemStore()
	first := store.addFlight(101, testDate, 10, 5)
	second := store.addFlight(202, testDate, 0, 5) // fully booked
	third := store.addFlight(303, testDate, 10, 5)
	engine := New(store, 0)

	_, err := engine.Book(context.Background(), 1, []Leg{
		{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(1)},
		{FlightNumber: 202, FlightDate: testDate},
		{FlightNumber: 303, FlightDate: testDate},
	})
	assert.ErrorIs(t, err, ErrExhausted)

	// Leg 1's decrement, ticket and seat claim were all rolled back.
	assert.Equal(t, 10, store.remainingTickets(first))
	assert.Equal(t, 0, store.remainingTickets(second))
	assert.Equal(t, 10, store.remainingTickets(third))
	assert.Equal(t, 0, store.ticketCount())
	assert.Equal(t, model.SeatAvailable, store.seatStatus(first, 1))
}

func TestConcurrentBookingsForLastSlots(t *testing.T) {
	const slots = 3
	const callers = 10

	store := newMemStore()
	flightID := store.addFlight(101, testDate, slots, 0)
	engine := New(store, 0)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(customer int) {
			defer wg.Done()
			_, errs[customer] = engine.Book(context.Background(), int64(customer+1), []Leg{
				{FlightNumber: 101, FlightDate: testDate},
			})
		}(i)
	}
	wg.Wait()

	succeeded, exhausted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrExhausted):
			exhausted++
		}
	}
	assert.Equal(t, slots, succeeded)
	assert.Equal(t, callers-slots, exhausted)
	assert.Equal(t, 0, store.remainingTickets(flightID))
	assert.Equal(t, slots, store.ticketCount())
}

func TestConcurrentClaimsForOneSeat(t *testing.T) {
	const callers = 8

	store := newMemStore()
	flightID := store.addFlight(101, testDate, callers, 1)
	engine := New(store, 0)

	var wg sync.WaitGroup
	results := make([]*Result, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(customer int) {
			defer wg.Done()
			results[customer], errs[customer] = engine.Book(context.Background(), int64(customer+1), []Leg{
				{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(1)},
			})
		}(i)
	}
	wg.Wait()

	// Every caller got a ticket, exactly one got the seat.
	won := 0
	for i, res := range results {
		require.NoError(t, errs[i])
		if res.Confirmations[0].SeatNumber != nil {
			won++
		} else {
			assert.True(t, res.SeatMiss)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, model.SeatBooked, store.seatStatus(flightID, 1))
	assert.Equal(t, 0, store.remainingTickets(flightID))
}

func TestConcurrentBookingsWithContestedSeatMap(t *testing.T) {
	const slots = 5
	const seats = 5
	const callers = 20

	store := newMemStore()
	flightID := store.addFlight(101, testDate, slots, seats)
	engine := New(store, 0)

	var wg sync.WaitGroup
	results := make([]*Result, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(customer int) {
			defer wg.Done()
			results[customer], errs[customer] = engine.Book(context.Background(), int64(customer+1), []Leg{
				{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(customer%seats + 1)},
			})
		}(i)
	}
	wg.Wait()

	var assigned []int
	succeeded := 0
	exhausted := 0
	for i, res := range results {
		if errs[i] != nil {
			require.ErrorIs(t, errs[i], ErrExhausted)
			exhausted++
			continue
		}
		succeeded++
		if sn := res.Confirmations[0].SeatNumber; sn != nil {
			assigned = append(assigned, *sn)
		}
	}

	// Seat contention never blocks ticket-slot acquisition: exactly
	// the slot count succeeds and the counter drains to zero.
	assert.Equal(t, slots, succeeded)
	assert.Equal(t, callers-slots, exhausted)
	assert.Equal(t, 0, store.remainingTickets(flightID))
	assert.LessOrEqual(t, len(assigned), seats)

	// No seat was handed out twice.
	seen := make(map[int]bool)
	for _, sn := range assigned {
		assert.False(t, seen[sn], "seat %d assigned twice", sn)
		seen[sn] = true
	}
}

func TestReassignSeatMovesTicket(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(1)}})
	require.NoError(t, err)

	require.NoError(t, engine.ReassignSeat(ctx, 1, 101, testDate, 2))

	assert.Equal(t, model.SeatAvailable, store.seatStatus(flightID, 1))
	assert.Equal(t, model.SeatBooked, store.seatStatus(flightID, 2))
	ticket := store.ticketFor(1, flightID)
	require.NotNil(t, ticket.SeatNumber)
	assert.Equal(t, 2, *ticket.SeatNumber)
}

func TestReassignSeatFirstAssignment(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate}})
	require.NoError(t, err)

	require.NoError(t, engine.ReassignSeat(ctx, 1, 101, testDate, 5))
	assert.Equal(t, model.SeatBooked, store.seatStatus(flightID, 5))
}

func TestReassignSeatErrors(t *testing.T) {
	store := newMemStore()
	store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)
	ctx := context.Background()

	// No ticket yet.
	err := engine.ReassignSeat(ctx, 1, 101, testDate, 2)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(2)}})
	require.NoError(t, err)

	// Unknown flight, unknown seat, same seat.
	assert.ErrorIs(t, engine.ReassignSeat(ctx, 1, 999, testDate, 2), ErrFlightNotFound)
	assert.ErrorIs(t, engine.ReassignSeat(ctx, 1, 101, testDate, 99), ErrSeatNotFound)
	assert.ErrorIs(t, engine.ReassignSeat(ctx, 1, 101, testDate, 2), ErrValidation)
}

func TestReassignFailedClaimLeavesCustomerSeatless(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(1)}})
	require.NoError(t, err)
	store.setSeatStatus(flightID, 2, model.SeatBooked)

	err = engine.ReassignSeat(ctx, 1, 101, testDate, 2)
	assert.ErrorIs(t, err, ErrExhausted)

	// The old seat was released before the claim was attempted and
	// stays released on failure.
	assert.Equal(t, model.SeatAvailable, store.seatStatus(flightID, 1))
	assert.Nil(t, store.ticketFor(1, flightID).SeatNumber)
}

func TestConcurrentReassignToSameSeat(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 5)
	engine := New(store, 0)
	ctx := context.Background()

	_, err := engine.Book(ctx, 1, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(1)}})
	require.NoError(t, err)
	_, err = engine.Book(ctx, 2, []Leg{{FlightNumber: 101, FlightDate: testDate, PreferredSeat: seatPtr(2)}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = engine.ReassignSeat(ctx, int64(n+1), 101, testDate, 3)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrExhausted)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, model.SeatBooked, store.seatStatus(flightID, 3))

	// Both old seats were released; the loser ends up seatless.
	assert.Equal(t, model.SeatAvailable, store.seatStatus(flightID, 1))
	assert.Equal(t, model.SeatAvailable, store.seatStatus(flightID, 2))
	winners := 0
	for _, customer := range []int64{1, 2} {
		if store.ticketFor(customer, flightID).SeatNumber != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAvailableSeats(t *testing.T) {
	store := newMemStore()
	flightID := store.addFlight(101, testDate, 10, 4)
	store.setSeatStatus(flightID, 2, model.SeatBooked)
	store.setSeatStatus(flightID, 3, model.SeatUnavailable)
	engine := New(store, 0)
	ctx := context.Background()

	seats, err := engine.AvailableSeats(ctx, 101, testDate)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, seats)

	_, err = engine.AvailableSeats(ctx, 999, testDate)
	assert.ErrorIs(t, err, ErrFlightNotFound)
}
