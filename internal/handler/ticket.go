package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aerovia/flight-booking/internal/booking"
	"github.com/aerovia/flight-booking/internal/queue"
	"github.com/aerovia/flight-booking/internal/repository"
	queue_publisher "github.com/aerovia/flight-booking/internal/service"
)

// TicketHandler serves booking, seat reassignment and history.
type TicketHandler struct {
	Engine  *booking.Engine
	Tickets *repository.TicketRepo
}

func NewTicketHandler(engine *booking.Engine, tickets *repository.TicketRepo) *TicketHandler {
	if engine == nil || tickets == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Engine: engine, Tickets: tickets}
}

// ----- DTOs -----

type bookLegReq struct {
	FlightNumber  int    `json:"flight_number"`
	FlightDate    string `json:"flight_date"` // YYYY-MM-DD
	PreferredSeat *int   `json:"preferred_seat,omitempty"`
}
type bookReq struct {
	Legs []bookLegReq `json:"legs"`
}
type reassignReq struct {
	FlightNumber int    `json:"flight_number"`
	FlightDate   string `json:"flight_date"`
	SeatNumber   int    `json:"seat_number"`
}

// Book books every leg of the request atomically for the
// authenticated customer.  A preferred seat that cannot be claimed
// does not fail the booking; the response flags it instead.
func (h *TicketHandler) Book(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	legs := make([]booking.Leg, 0, len(req.Legs))
	for _, l := range req.Legs {
		date, err := parseDate(strings.TrimSpace(l.FlightDate))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_date must be YYYY-MM-DD"})
		}
		legs = append(legs, booking.Leg{
			FlightNumber:  l.FlightNumber,
			FlightDate:    date,
			PreferredSeat: l.PreferredSeat,
		})
	}

	res, err := h.Engine.Book(c.Request().Context(), uid, legs)
	if err != nil {
		return bookingError(c, err)
	}

	// Best-effort event per booked leg; the booking already committed.
	for i, conf := range res.Confirmations {
		ev := queue.TicketBookedEvent{
			TicketID:     conf.TicketID,
			CustomerID:   uid,
			FlightNumber: legs[i].FlightNumber,
			FlightDate:   legs[i].FlightDate.Format("2006-01-02"),
			BookedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if conf.SeatNumber != nil {
			ev.SeatNumber = *conf.SeatNumber
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = queue_publisher.PublishTicketBooked(ctx, ev)
		cancel()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"confirmations": res.Confirmations,
		"seat_miss":     res.SeatMiss,
	})
}

// ReassignSeat moves the customer's ticket on a flight to another
// seat, or assigns a first seat to a seatless ticket.
func (h *TicketHandler) ReassignSeat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reassignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := parseDate(strings.TrimSpace(req.FlightDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_date must be YYYY-MM-DD"})
	}

	if err := h.Engine.ReassignSeat(c.Request().Context(), uid, req.FlightNumber, date, req.SeatNumber); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight_number": req.FlightNumber,
		"flight_date":   req.FlightDate,
		"seat_number":   req.SeatNumber,
	})
}

// History lists everything the customer ever booked, newest first.
func (h *TicketHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Tickets.HistoryByCustomer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load history failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": entries})
}

// bookingError translates engine sentinels into HTTP responses.
// Exhausted and duplicate bookings are conflicts: the request was
// well-formed but the current state refuses it.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrFlightNotFound),
		errors.Is(err, booking.ErrSeatNotFound),
		errors.Is(err, booking.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrDuplicateBooking),
		errors.Is(err, booking.ErrExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
}
