package model

import "time"

// FlightRoute describes a scheduled route flown daily between two
// cities.  A route is identified by its flight number and spawns one
// Flight row per day between StartDate and EndDate when provisioned.
// The overbooking factor inflates the sellable ticket count beyond
// the aircraft capacity.
//
// Fields:
//  FlightNumber  – route identifier, primary key.
//  DepartureCity – city the flight departs from.
//  DestinationCity – city the flight arrives at.
//  DepartureTime – scheduled departure time of day.
//  ArrivalTime   – scheduled arrival time of day.
//  AircraftID    – aircraft assigned to the route.
//  Overbooking   – fraction of extra tickets sold above capacity.
//  StartDate     – first day the route operates.
//  EndDate       – last day the route operates (nil = open ended).
type FlightRoute struct {
	FlightNumber    int        // flight_route.flight_number
	DepartureCity   string     // flight_route.departure_city
	DestinationCity string     // flight_route.destination_city
	DepartureTime   string     // flight_route.departure_time (HH:MM:SS)
	ArrivalTime     string     // flight_route.arrival_time (HH:MM:SS)
	AircraftID      int64      // flight_route.aircraft_id
	Overbooking     float64    // flight_route.overbooking
	StartDate       time.Time  // flight_route.start_date
	EndDate         *time.Time // flight_route.end_date (nullable)
}

// Flight is one dated departure of a route.  AvailableTickets is the
// contested counter decremented on every booked ticket; Version is
// bumped on each successful decrement and guards conditional updates.
// AvailableTickets never drops below zero at a committed state.
type Flight struct {
	ID               int64     // flight.flight_id
	FlightNumber     int       // flight.flight_number
	FlightDate       time.Time // flight.flight_date (date only, UTC)
	AvailableTickets int       // flight.available_tickets
	Version          int64     // flight.version
}

// FlightDetail joins a flight with its route information for search
// results and booking history.
type FlightDetail struct {
	ID               int64     `json:"flight_id"`
	FlightNumber     int       `json:"flight_number"`
	DepartureCity    string    `json:"departure_city"`
	DestinationCity  string    `json:"destination_city"`
	DepartureTime    string    `json:"departure_time"`
	ArrivalTime      string    `json:"arrival_time"`
	AvailableTickets int       `json:"available_tickets"`
	FlightDate       time.Time `json:"flight_date"`
}
