package model

import "time"

// FavoriteCity is a city a user has pinned to their dashboard.  Country and
// coordinates are optional: a favorite saved from a free-text search may not
// carry them, in which case the dashboard geocodes the city name on demand.
// Uniqueness per (user, case-insensitive city name) is enforced by the
// repository before insert.
type FavoriteCity struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	City      string    `json:"city"`
	Country   *string   `json:"country,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
