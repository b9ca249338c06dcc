// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketBookedEvent is published after a booking transaction commits.
// It carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.  SeatNumber is 0
// when no seat was claimed with the ticket.
type TicketBookedEvent struct {
	TicketID     int64  `json:"ticket_id"`
	CustomerID   int64  `json:"customer_id"`
	FlightNumber int    `json:"flight_number"`
	FlightDate   string `json:"flight_date"`
	SeatNumber   int    `json:"seat_number,omitempty"`
	BookedAt     string `json:"booked_at"`
}
