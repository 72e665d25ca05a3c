package commands

import (
	"context"
	"log/slog"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/infra/metrics"
	"facility-booking/internal/usecase/shared"
)

// dispatcher hands intents to the publisher once the state change is committed.
// Failures are logged and counted, never returned.
type dispatcher struct {
	publisher shared.IntentPublisher
	logger    *slog.Logger
}

func (d dispatcher) dispatch(ctx context.Context, intents []intent.Intent) {
	if len(intents) == 0 {
		return
	}
	for _, in := range intents {
		if in.Kind() == intent.KindRefundRequest {
			metrics.IncRefundIntent()
		}
	}
	if err := d.publisher.Publish(ctx, intents...); err != nil {
		for _, in := range intents {
			metrics.IncIntentPublishFailure(string(in.Kind()))
		}
		d.logger.WarnContext(ctx, "failed to publish intents",
			slog.Int("count", len(intents)),
			slog.String("error", err.Error()))
	}
}
