package router // route registration for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aerovia/flight-booking/internal/config"
	"github.com/aerovia/flight-booking/internal/handler"
	"github.com/aerovia/flight-booking/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Register, login,
// refresh and logout live under /v1/auth and need no session; /v1/me
// sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterFlights wires flight search and seat availability.  Both are
// read-heavy GETs, so they sit behind the Redis response cache and the
// token-bucket rate limiter when a Redis client is available.
func RegisterFlights(e *echo.Echo, f *handler.FlightHandler, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	g := e.Group("/v1/flights")
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))
	g.Use(middleware.NewRedisCache(cacheCfg, rdb))
	g.GET("/search", f.Search)
	g.GET("/seats", f.AvailableSeats)
}

// RegisterTickets wires the booking endpoints for authenticated users.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, jwtSecret string, rdb *redis.Client) {
	rlCfg := config.LoadRateLimitConfig()

	g := e.Group("/v1/tickets")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("USER", "ADMIN"))
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))
	g.POST("", t.Book)
	g.POST("/seat", t.ReassignSeat)
	g.GET("/history", t.History)
}

// RegisterAdmin wires route provisioning, ADMIN only.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.POST("/routes", a.CreateRoute)
}
