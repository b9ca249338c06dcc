package model

import "time"

// User mirrors the 'user' table.  Role is either USER or ADMIN; only
// admins may provision routes and flights.
type User struct {
	ID           int64     // user.id
	Username     string    // user.username
	PasswordHash string    // user.password
	Role         string    // user.role
	CreatedAt    time.Time // user.created_at
}

// CustomerInfo holds the profile details captured at registration.
// It shares its primary key with the user row.
type CustomerInfo struct {
	ID        int64     // customer_info.id (= user.id)
	Name      string    // customer_info.name
	BirthDate time.Time // customer_info.birth_date
	Gender    string    // customer_info.gender ("male" | "female")
}
