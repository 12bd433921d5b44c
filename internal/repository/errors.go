// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert would duplicate the unique
// email column. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateCity is returned when a user already has a favorite with the
// same city name (compared case-insensitively). Handlers translate this
// into an HTTP 409 response.
var ErrDuplicateCity = errors.New("city already in favorites")
