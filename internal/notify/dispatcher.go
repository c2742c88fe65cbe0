package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultQueueSize = 16

type queuedEvent struct {
	event   string
	payload any
}

// Dispatcher delivers events asynchronously through a bounded queue so
// callers never block on the notification channel. When the queue is full
// the newest event is dropped and the drop is logged.
type Dispatcher struct {
	channel Channel
	queue   chan queuedEvent
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(channel Channel, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Dispatcher{
		channel: channel,
		queue:   make(chan queuedEvent, size),
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for item := range d.queue {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := d.channel.Send(ctx, item.event, item.payload); err != nil {
				log.Error().Str("event", item.event).Err(err).Msg("notification delivery failed")
			}
			cancel()
		}
	}()
}

// Enqueue queues an event for delivery. Returns false when the event was
// dropped because the queue is full or the dispatcher is stopped. Producers
// such as background scan goroutines may outlive Stop, so a late Enqueue
// must degrade to a drop instead of hitting the closed channel.
func (d *Dispatcher) Enqueue(event string, payload any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Warn().Str("event", event).Msg("dispatcher stopped, dropping event")
		return false
	}

	select {
	case d.queue <- queuedEvent{event: event, payload: payload}:
		return true
	default:
		log.Warn().Str("event", event).Msg("notification queue full, dropping event")
		return false
	}
}

// Stop drains the queue and waits for in-flight deliveries. Safe to call
// more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
