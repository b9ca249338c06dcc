package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aerovia/flight-booking/internal/model"
)

// memStore is an in-memory Store with the same conditional-write
// semantics as the MySQL implementation: every mutation checks the
// version (or status) guard under the store lock, so two transactions
// that read the same version can never both win.  Mutations apply
// immediately and are undone on rollback, which mirrors how competing
// writers observe each other through the shared rows.
type memStore struct {
	mu           sync.Mutex
	flights      map[int64]*model.Flight
	flightIDs    map[flightKey]int64
	seats        map[seatKey]*model.Seat
	tickets      map[ticketKey]*model.Ticket
	ticketsByID  map[int64]*model.Ticket
	nextFlightID int64
	nextTicketID int64
}

type flightKey struct {
	number int
	date   string
}

type seatKey struct {
	flightID   int64
	seatNumber int
}

type ticketKey struct {
	customerID int64
	flightID   int64
}

func newMemStore() *memStore {
	return &memStore{
		flights:     make(map[int64]*model.Flight),
		flightIDs:   make(map[flightKey]int64),
		seats:       make(map[seatKey]*model.Seat),
		tickets:     make(map[ticketKey]*model.Ticket),
		ticketsByID: make(map[int64]*model.Ticket),
	}
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// addFlight provisions a flight with the given remaining tickets and
// seatCount seats numbered from 1, all AVAILABLE.
func (s *memStore) addFlight(number int, date time.Time, tickets, seatCount int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFlightID++
	id := s.nextFlightID
	s.flights[id] = &model.Flight{
		ID:               id,
		FlightNumber:     number,
		FlightDate:       date,
		AvailableTickets: tickets,
		Version:          1,
	}
	s.flightIDs[flightKey{number, dayKey(date)}] = id
	for n := 1; n <= seatCount; n++ {
		s.seats[seatKey{id, n}] = &model.Seat{FlightID: id, SeatNumber: n, Status: model.SeatAvailable, Version: 1}
	}
	return id
}

func (s *memStore) setSeatStatus(flightID int64, seatNumber int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[seatKey{flightID, seatNumber}].Status = status
}

func (s *memStore) remainingTickets(flightID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flights[flightID].AvailableTickets
}

func (s *memStore) seatStatus(flightID int64, seatNumber int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[seatKey{flightID, seatNumber}].Status
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func (s *memStore) ticketFor(customerID, flightID int64) *model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketKey{customerID, flightID}]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

func (s *memStore) Begin(context.Context) (Tx, error) {
	return &memTx{s: s}, nil
}

// memTx records an undo closure per mutation; Rollback replays them in
// reverse, Commit discards them.
type memTx struct {
	s    *memStore
	undo []func()
	done bool
}

func (tx *memTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	tx.undo = nil
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	return nil
}

func (tx *memTx) FlightByNumberAndDate(_ context.Context, number int, date time.Time) (*model.Flight, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	id, ok := tx.s.flightIDs[flightKey{number, dayKey(date)}]
	if !ok {
		return nil, ErrFlightNotFound
	}
	cp := *tx.s.flights[id]
	return &cp, nil
}

func (tx *memTx) DecrementAvailableTickets(_ context.Context, flightID, version int64) (bool, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	f, ok := tx.s.flights[flightID]
	if !ok || f.Version != version {
		return false, nil
	}
	f.AvailableTickets--
	f.Version++
	tx.undo = append(tx.undo, func() {
		f.AvailableTickets++
		f.Version++
	})
	return true, nil
}

func (tx *memTx) TicketByCustomerAndFlight(_ context.Context, customerID, flightID int64) (*model.Ticket, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	t, ok := tx.s.tickets[ticketKey{customerID, flightID}]
	if !ok {
		return nil, ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (tx *memTx) InsertTicket(_ context.Context, t *model.Ticket) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	key := ticketKey{t.CustomerID, t.FlightID}
	if _, exists := tx.s.tickets[key]; exists {
		return fmt.Errorf("duplicate ticket for customer %d flight %d", t.CustomerID, t.FlightID)
	}
	tx.s.nextTicketID++
	t.ID = tx.s.nextTicketID
	cp := *t
	tx.s.tickets[key] = &cp
	tx.s.ticketsByID[t.ID] = &cp
	tx.undo = append(tx.undo, func() {
		delete(tx.s.tickets, key)
		delete(tx.s.ticketsByID, cp.ID)
	})
	return nil
}

func (tx *memTx) SetTicketSeat(_ context.Context, ticketID int64, seatNumber *int) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	t, ok := tx.s.ticketsByID[ticketID]
	if !ok {
		return ErrTicketNotFound
	}
	prev := t.SeatNumber
	t.SeatNumber = seatNumber
	tx.undo = append(tx.undo, func() { t.SeatNumber = prev })
	return nil
}

func (tx *memTx) SeatByFlightAndNumber(_ context.Context, flightID int64, seatNumber int) (*model.Seat, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	seat, ok := tx.s.seats[seatKey{flightID, seatNumber}]
	if !ok {
		return nil, ErrSeatNotFound
	}
	cp := *seat
	return &cp, nil
}

func (tx *memTx) MarkSeatBooked(_ context.Context, flightID int64, seatNumber int, version int64) (bool, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	seat, ok := tx.s.seats[seatKey{flightID, seatNumber}]
	if !ok || seat.Status != model.SeatAvailable || seat.Version != version {
		return false, nil
	}
	seat.Status = model.SeatBooked
	seat.Version++
	tx.undo = append(tx.undo, func() {
		seat.Status = model.SeatAvailable
		seat.Version++
	})
	return true, nil
}

func (tx *memTx) ReleaseSeat(_ context.Context, flightID int64, seatNumber int) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	seat, ok := tx.s.seats[seatKey{flightID, seatNumber}]
	if !ok {
		return ErrSeatNotFound
	}
	prev := seat.Status
	seat.Status = model.SeatAvailable
	seat.Version++
	tx.undo = append(tx.undo, func() {
		seat.Status = prev
		seat.Version++
	})
	return nil
}

func (tx *memTx) AvailableSeatNumbers(_ context.Context, flightID int64) ([]int, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	var out []int
	for key, seat := range tx.s.seats {
		if key.flightID == flightID && seat.Status == model.SeatAvailable {
			out = append(out, key.seatNumber)
		}
	}
	sort.Ints(out)
	return out, nil
}
