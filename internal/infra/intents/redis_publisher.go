package intents

import (
	"context"
	"encoding/json"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher appends each intent to the stream "<prefix>:<kind>", where the notification sink and
// the payment gateway adapter consume them.
type RedisPublisher struct {
	client *redis.Client
	prefix string
	maxLen int64
}

func NewRedisPublisher(client *redis.Client, prefix string, maxLen int64) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

func (p *RedisPublisher) Stream(kind intent.Kind) string {
	return p.prefix + ":" + string(kind)
}

func (p *RedisPublisher) Publish(ctx context.Context, intents ...intent.Intent) error {
	if len(intents) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, in := range intents {
		payload, err := json.Marshal(in)
		if err != nil {
			return errs.Wrapf(err, "marshal %s intent", in.Kind())
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.Stream(in.Kind()),
			MaxLen: p.maxLen,
			Approx: true,
			Values: map[string]any{
				"kind":    string(in.Kind()),
				"payload": string(payload),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrap(err, "publish intents to redis streams")
	}
	return nil
}
