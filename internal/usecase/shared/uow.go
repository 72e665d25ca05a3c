package shared

import (
	"context"
	"time"

	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/domain/review"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: read-write transaction, retried on serialization failures and stale writes
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinBookingScope: like Within, but serialized against every other writer in the same facility
	// and consumer scope for the lifetime of the transaction
	WithinBookingScope(ctx context.Context, scope BookingScope, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: consistent multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// BookingScope names the rows a creation reads for its guards.
type BookingScope struct {
	FacilityID uuid.UUID
	ConsumerID uuid.UUID
}

type Tx interface {
	Reservations() ReservationRepository
	Facilities() FacilityRepository
	Reviews() ReviewRepository
	Ratings() RatingRepository
}

type ReservationRepository interface {
	Insert(ctx context.Context, r *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// Update is a compare-and-swap on r.Version(); the stored version is bumped on success.
	Update(ctx context.Context, r *reservation.Reservation) error

	// Occupancy returns active reservations of the facility overlapping [from, to).
	Occupancy(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]reservation.Occupancy, error)
	CountPending(ctx context.Context, consumerID uuid.UUID) (int, error)
	// CountSameDay counts quota-relevant reservations whose start lies in [dayStart, dayEnd].
	CountSameDay(ctx context.Context, consumerID uuid.UUID, dayStart, dayEnd time.Time) (int, error)

	// ListDue returns reservations a sweep may act on, ordered by id. The sweep re-checks each one
	// inside its own transaction.
	ListDue(ctx context.Context, filter DueFilter) ([]uuid.UUID, error)
	List(ctx context.Context, filter ReservationFilter) ([]*reservation.Reservation, error)
}

type FacilityRepository interface {
	Insert(ctx context.Context, f *facility.Facility) error
	InsertSpace(ctx context.Context, s *facility.Space) error
	FindByID(ctx context.Context, id uuid.UUID) (*facility.Facility, error)
	FindSpace(ctx context.Context, id uuid.UUID) (*facility.Space, error)
	IncrementBookings(ctx context.Context, id uuid.UUID) error
	ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type ReviewRepository interface {
	Insert(ctx context.Context, r *review.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error)
	Update(ctx context.Context, r *review.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsForReviewer(ctx context.Context, reservationID, reviewerID uuid.UUID) (bool, error)
	// ListByReviewee returns hidden reviews too; aggregation filters them.
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID, t review.Type) ([]*review.Review, error)
	ListVisible(ctx context.Context, filter ReviewFilter) ([]*review.Review, error)
}

type RatingRepository interface {
	// Lock is held until the surrounding transaction ends; recomputations of one reviewee run one at a time.
	Lock(ctx context.Context, revieweeID uuid.UUID, t review.Type) error
	Upsert(ctx context.Context, rec RatingRecord) error
	Get(ctx context.Context, target review.Target) (*RatingRecord, error)
}
