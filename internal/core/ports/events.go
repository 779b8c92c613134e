package ports

import "go.trai.ch/relay/internal/core/domain"

// EventStream broadcasts reload lifecycle events to any number of
// subscribers.
//
// Publishing never blocks: a subscriber whose buffer is full misses the
// event rather than stalling the coordinator.
type EventStream interface {
	// Publish delivers an event to all current subscribers.
	Publish(event domain.ReloadEvent)

	// Subscribe returns a channel of events and a cancel function that
	// removes the subscription and closes the channel.
	Subscribe() (<-chan domain.ReloadEvent, func())
}
