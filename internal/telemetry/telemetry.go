package telemetry

import (
	"context"
	"time"

	"secscan-go/internal/notify"

	"github.com/rs/zerolog/log"
)

// Tracker is an advisory metrics/event sink. Delivery failures are swallowed;
// telemetry must never affect the pipeline.
type Tracker struct {
	channel notify.Channel
}

// NewTracker wraps the given channel. A nil channel produces a log-only
// tracker, which is what tests use.
func NewTracker(channel notify.Channel) *Tracker {
	return &Tracker{channel: channel}
}

func (t *Tracker) TrackEvent(name string, properties map[string]any) {
	log.Debug().Str("event", name).Fields(properties).Msg("telemetry event")
	t.forward("telemetry_event", map[string]any{
		"name":       name,
		"properties": properties,
	})
}

func (t *Tracker) TrackMetric(name string, value float64) {
	log.Debug().Str("metric", name).Float64("value", value).Msg("telemetry metric")
	t.forward("telemetry_metric", map[string]any{
		"name":  name,
		"value": value,
	})
}

func (t *Tracker) forward(event string, payload map[string]any) {
	if t.channel == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := t.channel.Send(ctx, event, payload); err != nil {
		log.Debug().Str("event", event).Err(err).Msg("telemetry delivery failed")
	}
}
