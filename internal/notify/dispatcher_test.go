package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingChannel struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (c *recordingChannel) Send(ctx context.Context, event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *recordingChannel) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func TestDispatcherDelivers(t *testing.T) {
	channel := &recordingChannel{}
	dispatcher := NewDispatcher(channel, 8)
	dispatcher.Start()

	assert.True(t, dispatcher.Enqueue("first", nil))
	assert.True(t, dispatcher.Enqueue("second", nil))

	dispatcher.Stop()

	assert.Equal(t, []string{"first", "second"}, channel.recorded())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// Worker never started, so the queue fills up.
	dispatcher := NewDispatcher(&recordingChannel{}, 2)

	assert.True(t, dispatcher.Enqueue("first", nil))
	assert.True(t, dispatcher.Enqueue("second", nil))
	assert.False(t, dispatcher.Enqueue("third", nil))
}

func TestDispatcherSurvivesDeliveryFailure(t *testing.T) {
	channel := &recordingChannel{err: errors.New("listener down")}
	dispatcher := NewDispatcher(channel, 8)
	dispatcher.Start()

	assert.True(t, dispatcher.Enqueue("first", nil))
	assert.True(t, dispatcher.Enqueue("second", nil))

	dispatcher.Stop()

	// Both deliveries were attempted despite the failures.
	assert.Equal(t, []string{"first", "second"}, channel.recorded())
}

func TestDispatcherDropsEventsAfterStop(t *testing.T) {
	channel := &recordingChannel{}
	dispatcher := NewDispatcher(channel, 8)
	dispatcher.Start()

	assert.True(t, dispatcher.Enqueue("before", nil))
	dispatcher.Stop()

	// Background producers can outlive shutdown; their events are dropped,
	// not delivered, and never panic.
	assert.NotPanics(t, func() {
		assert.False(t, dispatcher.Enqueue("late", nil))
	})
	assert.Equal(t, []string{"before"}, channel.recorded())

	assert.NotPanics(t, dispatcher.Stop)
}

func TestDispatcherDefaultQueueSize(t *testing.T) {
	dispatcher := NewDispatcher(&recordingChannel{}, 0)

	for i := 0; i < DefaultQueueSize; i++ {
		assert.True(t, dispatcher.Enqueue("event", nil))
	}
	assert.False(t, dispatcher.Enqueue("overflow", nil))
}
