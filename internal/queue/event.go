// Package queue defines message payloads exchanged over the message broker.
package queue

// FavoriteAddedEvent is published when a user pins a city to their
// dashboard. It carries enough information for downstream consumers to feed
// analytics or pre-warm weather caches without querying the primary
// database.
type FavoriteAddedEvent struct {
	FavoriteID uint64  `json:"favorite_id"`
	UserID     uint64  `json:"user_id"`
	City       string  `json:"city"`
	Country    *string `json:"country,omitempty"`
	AddedAt    string  `json:"added_at"`
}
