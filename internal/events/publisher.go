// README: Ride lifecycle event publishing contract.
package events

import (
	"context"
	"time"
)

// RideEvent is the wire form of a lifecycle transition.
type RideEvent struct {
	RideID     string    `json:"ride_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorType  string    `json:"actor_type"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events to downstream consumers. Publishing is
// best-effort for callers; a failed publish never fails a ride operation.
type Publisher interface {
	Publish(ctx context.Context, e RideEvent) error
	Close() error
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RideEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }
