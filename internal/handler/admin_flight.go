package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aerovia/flight-booking/internal/model"
	"github.com/aerovia/flight-booking/internal/repository"
)

// AdminHandler serves route and flight provisioning for ADMIN users.
type AdminHandler struct {
	Flights *repository.FlightRepo
	Seats   *repository.SeatRepo
}

func NewAdminHandler(flights *repository.FlightRepo, seats *repository.SeatRepo) *AdminHandler {
	if flights == nil || seats == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Flights: flights, Seats: seats}
}

type createRouteReq struct {
	FlightNumber    int     `json:"flight_number"`
	DepartureCity   string  `json:"departure_city"`
	DestinationCity string  `json:"destination_city"`
	DepartureTime   string  `json:"departure_time"` // HH:MM:SS
	ArrivalTime     string  `json:"arrival_time"`
	AircraftID      int64   `json:"aircraft_id"`
	Overbooking     float64 `json:"overbooking"`
	StartDate       string  `json:"start_date"` // YYYY-MM-DD
	EndDate         string  `json:"end_date,omitempty"`
}

// CreateRoute provisions a route together with its dated flight
// instances and seat maps.
func (h *AdminHandler) CreateRoute(c echo.Context) error {
	var req createRouteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FlightNumber <= 0 || req.AircraftID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_number and aircraft_id required"})
	}
	if strings.TrimSpace(req.DepartureCity) == "" || strings.TrimSpace(req.DestinationCity) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_city and destination_city required"})
	}
	if req.Overbooking < 0 || req.Overbooking > 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "overbooking must be between 0 and 1"})
	}
	start, err := parseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	var end *time.Time
	if s := strings.TrimSpace(req.EndDate); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		if d.Before(start) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date before start_date"})
		}
		end = &d
	}

	route := &model.FlightRoute{
		FlightNumber:    req.FlightNumber,
		DepartureCity:   strings.TrimSpace(req.DepartureCity),
		DestinationCity: strings.TrimSpace(req.DestinationCity),
		DepartureTime:   strings.TrimSpace(req.DepartureTime),
		ArrivalTime:     strings.TrimSpace(req.ArrivalTime),
		AircraftID:      req.AircraftID,
		Overbooking:     req.Overbooking,
		StartDate:       start,
		EndDate:         end,
	}
	created, err := h.Flights.ProvisionRoute(c.Request().Context(), route, h.Seats)
	if err != nil {
		switch err {
		case repository.ErrAircraftNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
		case repository.ErrRouteExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision route failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"flight_number":   req.FlightNumber,
		"flights_created": created,
	})
}
