package main // entry point

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aerovia/flight-booking/internal/booking"
	"github.com/aerovia/flight-booking/internal/config"
	"github.com/aerovia/flight-booking/internal/database"
	"github.com/aerovia/flight-booking/internal/handler"
	"github.com/aerovia/flight-booking/internal/queue"
	"github.com/aerovia/flight-booking/internal/repository"
	"github.com/aerovia/flight-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	flights := repository.NewFlightRepo(db)
	seats := repository.NewSeatRepo(db)
	tickets := repository.NewTicketRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	store := repository.NewSQLStore(db, flights, seats, tickets)
	engine := booking.New(store, cfg.MaxAttempts)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	flightH := handler.NewFlightHandler(flights, engine)
	ticketH := handler.NewTicketHandler(engine, tickets)
	adminH := handler.NewAdminHandler(flights, seats)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterFlights(e, flightH, rdb)
	router.RegisterTickets(e, ticketH, cfg.JWTSecret, rdb)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Booking log consumer; reconnects on its own.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
