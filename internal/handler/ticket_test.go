package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerovia/flight-booking/internal/booking"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBookingErrorMapsSentinelsToStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("bad legs: %w", booking.ErrValidation), http.StatusBadRequest},
		{"flight not found", fmt.Errorf("flight 999: %w", booking.ErrFlightNotFound), http.StatusNotFound},
		{"seat not found", fmt.Errorf("seat 12: %w", booking.ErrSeatNotFound), http.StatusNotFound},
		{"ticket not found", fmt.Errorf("no ticket: %w", booking.ErrTicketNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("already booked: %w", booking.ErrDuplicateBooking), http.StatusConflict},
		{"exhausted", fmt.Errorf("fully booked: %w", booking.ErrExhausted), http.StatusConflict},
		{"store failure", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, bookingError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestGetUserIDAcceptsJWTClaimTypes(t *testing.T) {
	c, _ := newTestContext(t)

	c.Set("user_id", float64(7)) // numeric JWT claims decode as float64
	got, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	c.Set("user_id", "19")
	got, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, int64(19), got)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestParseDateRejectsBadInput(t *testing.T) {
	d, err := parseDate("2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	_, err = parseDate("10/09/2026")
	assert.Error(t, err)
}
