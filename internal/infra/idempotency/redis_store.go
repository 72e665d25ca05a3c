package idempotency

import (
	"context"
	"errors"
	"time"

	"facility-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// processing marks a key whose first request has not finished yet.
const processing = "processing"

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(consumerID uuid.UUID, key string) string {
	return s.prefix + ":idem:" + consumerID.String() + ":" + key
}

func (s *RedisStore) Reserve(ctx context.Context, consumerID uuid.UUID, key string, lease time.Duration) (*uuid.UUID, error) {
	k := s.key(consumerID, key)
	ok, err := s.client.SetNX(ctx, k, processing, lease).Result()
	if err != nil {
		return nil, errs.Wrap(err, "reserve idempotency key")
	}
	if ok {
		return nil, nil
	}

	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; claim again
		return s.Reserve(ctx, consumerID, key, lease)
	}
	if err != nil {
		return nil, errs.Wrap(err, "read idempotency key")
	}
	return parseStored(val)
}

func (s *RedisStore) Complete(ctx context.Context, consumerID uuid.UUID, key string, reservationID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(consumerID, key), reservationID.String(), ttl).Err(); err != nil {
		return errs.Wrap(err, "complete idempotency key")
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, consumerID uuid.UUID, key string) error {
	if err := s.client.Del(ctx, s.key(consumerID, key)).Err(); err != nil {
		return errs.Wrap(err, "release idempotency key")
	}
	return nil
}

func parseStored(val string) (*uuid.UUID, error) {
	if val == processing {
		return nil, errs.ErrIdempotencyInProgress
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return nil, errs.Wrapf(err, "corrupt idempotency record %q", val)
	}
	return &id, nil
}
