package ports

import (
	"context"

	"github.com/dygon/bus-tracking/internal/core/domain"
)

// Audience is a set of connected observers that share one message shape.
type Audience interface {
	// Broadcast queues msg to every member and returns how many accepted it.
	// Members that cannot accept are dropped from the set.
	Broadcast(msg []byte) int
	Len() int
}

// Broadcaster fans a registry change out to every observer audience.
type Broadcaster interface {
	Publish(ctx context.Context, change domain.Change)
}
