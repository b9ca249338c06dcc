// Package repository implements MySQL persistence for flights, seats,
// tickets and users.  Sentinel values defined here let handlers
// distinguish failure scenarios without inspecting driver errors; the
// booking-facing transaction in store.go translates row misses into
// the booking package's own sentinels.
package repository

import "errors"

// ErrAircraftNotFound is returned when route provisioning references
// an aircraft that does not exist.
var ErrAircraftNotFound = errors.New("aircraft not found")

// ErrRouteExists is returned when provisioning a route whose flight
// number is already taken.
var ErrRouteExists = errors.New("flight route already exists")

// ErrUsernameExists is returned when registering a username that is
// already taken.
var ErrUsernameExists = errors.New("username already exists")
