// Package events re-exports the platform event bus for convenience.
// This allows internal modules to import events from internal/events
// while the implementation lives in platform/events.
package events

import (
	platformevents "mapview_backend/platform/events"
	"mapview_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// RedisBus is a type alias to the platform RedisBus
type RedisBus = platformevents.RedisBus

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewRedisBus creates a Redis pub/sub bus with every map session event
// decoder registered.
func NewRedisBus(client *redis.Client, prefix string, log *logger.Logger) *RedisBus {
	bus := platformevents.NewRedisBus(client, prefix, log)
	RegisterDecoders(bus)
	return bus
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	return platformevents.NewRedisClient(redisURL)
}
