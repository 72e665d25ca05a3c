package shared

import (
	"context"
	"time"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/domain/review"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SweepKind string

const (
	SweepStart    SweepKind = "start"
	SweepComplete SweepKind = "complete"
	SweepExpire   SweepKind = "expire"

	// reminders change no status, they only record that the notification went out
	SweepRemind       SweepKind = "remind"
	SweepReviewRemind SweepKind = "review_remind"
)

func (k SweepKind) IsValid() bool {
	switch k {
	case SweepStart, SweepComplete, SweepExpire, SweepRemind, SweepReviewRemind:
		return true
	default:
		return false
	}
}

// DueFilter selects what one sweep kind may act on. Cutoff bounds the kind's own timestamp:
// created_at for expire, start_at for remind, completed_at for review_remind. Start and complete use Now only.
type DueFilter struct {
	Kind   SweepKind
	Now    time.Time
	Cutoff time.Time

	// Limit <= 0 means no limit.
	Limit int
}

// KeysetCursor points at the last row of the previous page.
type KeysetCursor struct {
	At time.Time
	ID uuid.UUID
}

type ParticipantRole string

const (
	AsConsumer ParticipantRole = "consumer"
	AsOwner    ParticipantRole = "owner"
	AsAny      ParticipantRole = "any"
)

// ReservationFilter orders by start desc, id desc. A nil ParticipantID lists everything (admin).
type ReservationFilter struct {
	ParticipantID *uuid.UUID
	Role          ParticipantRole
	Status        *reservation.Status
	After         *KeysetCursor
	Limit         int
}

// ReviewFilter orders by created_at desc, id desc.
type ReviewFilter struct {
	RevieweeID uuid.UUID
	Type       review.Type
	After      *KeysetCursor
	Limit      int
}

type RatingRecord struct {
	Target     review.Target
	Type       review.Type
	Average    decimal.Decimal
	Categories map[string]decimal.Decimal
	Count      int
	UpdatedAt  time.Time
}

// IntentPublisher hands side-effect intents to external collaborators after commit.
type IntentPublisher interface {
	Publish(ctx context.Context, intents ...intent.Intent) error
}

// IdempotencyStore remembers which reservation a (consumer, key) pair created.
type IdempotencyStore interface {
	// Reserve claims the key for lease. A non-nil id means the key already completed; ErrIdempotencyInProgress
	// means another request holds it.
	Reserve(ctx context.Context, consumerID uuid.UUID, key string, lease time.Duration) (*uuid.UUID, error)
	// Complete stores the result for ttl, replacing the claim and its lease.
	Complete(ctx context.Context, consumerID uuid.UUID, key string, reservationID uuid.UUID, ttl time.Duration) error
	Release(ctx context.Context, consumerID uuid.UUID, key string) error
}
