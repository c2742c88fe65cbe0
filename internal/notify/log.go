package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogChannel is the fallback channel used when no webhook is configured.
// Events are logged and otherwise discarded.
type LogChannel struct{}

func (LogChannel) Send(ctx context.Context, event string, payload any) error {
	log.Info().Str("event", event).Interface("payload", payload).Msg("notification")
	return nil
}
