package model

import "time"

// User represents an application user record as stored in the `users` table.
// The password hash never leaves the repository/handler boundary: response
// types are defined separately in the handler package and omit it.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email, unique and lower-cased
	PasswordHash string    // users.password_hash, bcrypt
	CreatedAt    time.Time // users.created_at
}
