package reload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/engine/reload"
)

func TestStream_BroadcastsToAllSubscribers(t *testing.T) {
	s := reload.NewStream()

	a, cancelA := s.Subscribe()
	defer cancelA()
	b, cancelB := s.Subscribe()
	defer cancelB()

	s.Publish(domain.ReloadEvent{Type: domain.ReloadStart, Reason: domain.ReasonUserCommand})

	require.Equal(t, domain.ReloadStart, (<-a).Type)
	require.Equal(t, domain.ReloadStart, (<-b).Type)
}

func TestStream_CancelledSubscriberStopsReceiving(t *testing.T) {
	s := reload.NewStream()

	ch, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	s.Publish(domain.ReloadEvent{Type: domain.ReloadStart})

	_, open := <-ch
	assert.False(t, open)
}

func TestStream_SlowSubscriberNeverBlocksPublish(t *testing.T) {
	s := reload.NewStream()

	_, cancel := s.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Publish well past the subscriber buffer.
		for range 100 {
			s.Publish(domain.ReloadEvent{Type: domain.ReloadComplete})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
