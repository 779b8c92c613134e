// Package reload implements the reload coordinator and its lifecycle event
// stream.
package reload

import (
	"sync"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this misses events rather than blocking the
// coordinator.
const subscriberBuffer = 16

var _ ports.EventStream = (*Stream)(nil)

// Stream is an in-memory broadcast of reload lifecycle events.
type Stream struct {
	mu   sync.Mutex
	subs map[int]chan domain.ReloadEvent
	next int
}

// NewStream creates an empty event stream.
func NewStream() *Stream {
	return &Stream{subs: make(map[int]chan domain.ReloadEvent)}
}

// Publish delivers the event to every current subscriber without blocking.
func (s *Stream) Publish(event domain.ReloadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
			// Buffer full, drop the event for this subscriber.
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel; it is idempotent.
func (s *Stream) Subscribe() (<-chan domain.ReloadEvent, func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	ch := make(chan domain.ReloadEvent, subscriberBuffer)
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
