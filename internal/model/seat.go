package model

// Seat status values as stored in seat_info.seat_status.  AVAILABLE
// and BOOKED are the two states the booking flow moves between;
// UNAVAILABLE is an administrative state set during provisioning and
// never entered or left by bookings.
const (
	SeatAvailable   = "AVAILABLE"
	SeatBooked      = "BOOKED"
	SeatUnavailable = "UNAVAILABLE"
)

// Seat is one seat on one flight, keyed by (flight, seat number).
// Seats are pre-seeded per aircraft capacity when a flight is
// provisioned.  The status value itself acts as the compare-and-swap
// guard for claims: only a writer that observed AVAILABLE can flip a
// seat to BOOKED.  Version is bumped alongside so a release is never
// confused with the state a claimer read.
type Seat struct {
	FlightID   int64  // seat_info.flight_id
	SeatNumber int    // seat_info.seat_number
	Status     string // seat_info.seat_status
	Version    int64  // seat_info.version
}
