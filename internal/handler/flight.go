package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aerovia/flight-booking/internal/booking"
	"github.com/aerovia/flight-booking/internal/repository"
)

// FlightHandler serves flight search and seat availability queries.
type FlightHandler struct {
	Flights *repository.FlightRepo
	Engine  *booking.Engine
}

func NewFlightHandler(flights *repository.FlightRepo, engine *booking.Engine) *FlightHandler {
	if flights == nil || engine == nil {
		panic("nil dependency passed to NewFlightHandler")
	}
	return &FlightHandler{Flights: flights, Engine: engine}
}

// Search lists flights with tickets remaining for a city pair, on a
// single date (?date=) or an inclusive range (?start_date=&end_date=).
func (h *FlightHandler) Search(c echo.Context) error {
	departure := strings.TrimSpace(c.QueryParam("departure_city"))
	destination := strings.TrimSpace(c.QueryParam("destination_city"))
	if departure == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_city and destination_city required"})
	}

	var (
		from time.Time
		to   *time.Time
		err  error
	)
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		from, err = parseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	} else {
		start := strings.TrimSpace(c.QueryParam("start_date"))
		end := strings.TrimSpace(c.QueryParam("end_date"))
		if start == "" || end == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide date or start_date and end_date"})
		}
		from, err = parseDate(start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		until, err := parseDate(end)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		if until.Before(from) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date before start_date"})
		}
		to = &until
	}

	flights, err := h.Flights.Search(c.Request().Context(), departure, destination, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

// AvailableSeats lists open seat numbers on one flight instance.
func (h *FlightHandler) AvailableSeats(c echo.Context) error {
	number, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("flight_number")))
	if err != nil || number <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_number required"})
	}
	date, err := parseDate(strings.TrimSpace(c.QueryParam("date")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	seats, err := h.Engine.AvailableSeats(c.Request().Context(), number, date)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight_number": number,
		"date":          date.Format("2006-01-02"),
		"seats":         seats,
	})
}
