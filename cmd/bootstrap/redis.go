package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"facility-booking/internal/infra/idempotency"
	"facility-booking/internal/infra/intents"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
		NewIntentPublisher,
		NewIdempotencyStore,
	),
)

// NewRedisClient returns nil when REDIS_ADDR is empty.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewIntentPublisher(client *redis.Client, cfg config.Config, logger *slog.Logger) shared.IntentPublisher {
	if client == nil {
		logger.Warn("redis disabled, intents are only logged")
		return intents.NewLogPublisher(logger)
	}
	return intents.NewRedisPublisher(client, cfg.Redis.StreamPrefix, cfg.Redis.StreamMaxLen)
}

func NewIdempotencyStore(client *redis.Client, cfg config.Config, clk clock.Clock) shared.IdempotencyStore {
	if client == nil {
		return idempotency.NewMemoryStore(clk)
	}
	return idempotency.NewRedisStore(client, cfg.Redis.StreamPrefix)
}
