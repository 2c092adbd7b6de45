package ports

import "github.com/askus/askus/internal/core/domain"

// Broadcaster fans an event out to every connected subscriber. Delivery is
// fire-and-forget: no replay, no acknowledgment, and a subscriber that is
// disconnected misses events sent in the gap.
type Broadcaster interface {
	Broadcast(event domain.Event)
}
