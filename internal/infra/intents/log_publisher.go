package intents

import (
	"context"
	"encoding/json"
	"log/slog"

	"facility-booking/internal/domain/intent"
)

// LogPublisher records intents in the structured log. Used when no redis is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, intents ...intent.Intent) error {
	for _, in := range intents {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "intent emitted",
			slog.String("kind", string(in.Kind())),
			slog.String("payload", string(payload)))
	}
	return nil
}
