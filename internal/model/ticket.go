package model

import "time"

// Ticket records one customer's claim on one flight.  A ticket is
// created only as the terminal step of a successful booking, in the
// same transaction as the ticket-counter decrement.  At most one
// ticket exists per (customer, flight); the unique key enforces it.
// SeatNumber is nil until a seat is claimed.
type Ticket struct {
	ID           int64     // ticket.id
	CustomerID   int64     // ticket.customer_id
	FlightID     int64     // ticket.flight_id
	FlightNumber int       // ticket.flight_number
	FlightDate   time.Time // ticket.flight_date
	SeatNumber   *int      // ticket.seat_number (nullable)
}

// BookingHistoryEntry is one row of a customer's booking history,
// joined with route details for display.
type BookingHistoryEntry struct {
	TicketID        int64     `json:"ticket_id"`
	FlightNumber    int       `json:"flight_number"`
	SeatNumber      string    `json:"seat_number"` // "Not Selected" when none
	DepartureCity   string    `json:"departure_city"`
	DestinationCity string    `json:"destination_city"`
	FlightDate      time.Time `json:"flight_date"`
	DepartureTime   string    `json:"departure_time"`
	ArrivalTime     string    `json:"arrival_time"`
}
