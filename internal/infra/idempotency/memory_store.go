package idempotency

import (
	"context"
	"sync"
	"time"

	"facility-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type memoryKey struct {
	consumerID uuid.UUID
	key        string
}

// MemoryStore is the single-process fallback when redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[memoryKey]entry
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{clock: clk, entries: make(map[memoryKey]entry)}
}

func (s *MemoryStore) Reserve(_ context.Context, consumerID uuid.UUID, key string, lease time.Duration) (*uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey{consumerID, key}
	now := s.clock.Now()
	if e, ok := s.entries[k]; ok && now.Before(e.expiresAt) {
		return parseStored(e.value)
	}
	s.entries[k] = entry{value: processing, expiresAt: now.Add(lease)}
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, consumerID uuid.UUID, key string, reservationID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryKey{consumerID, key}] = entry{value: reservationID.String(), expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, consumerID uuid.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memoryKey{consumerID, key})
	return nil
}
