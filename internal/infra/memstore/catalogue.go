package memstore

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"time"

	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type facilityRow struct {
	id, ownerID   uuid.UUID
	name          string
	hourlyRate    decimal.Decimal
	active        bool
	totalBookings int
	createdAt     time.Time
	updatedAt     time.Time
}

func (f facilityRow) entity() *facility.Facility {
	return facility.ReconstructFacility(f.id, f.ownerID, f.name, f.hourlyRate, f.active, f.totalBookings, f.createdAt, f.updatedAt)
}

type facilityRepo struct {
	tx *memTx
}

func (r *facilityRepo) Insert(_ context.Context, f *facility.Facility) error {
	row := facilityRow{
		id:            f.ID(),
		ownerID:       f.OwnerID(),
		name:          f.Name(),
		hourlyRate:    f.HourlyRate(),
		active:        f.IsActive(),
		totalBookings: f.TotalBookings(),
		createdAt:     f.CreatedAt(),
		updatedAt:     f.UpdatedAt(),
	}
	return r.tx.write(func() (func(), error) {
		undo := restore(r.tx.store.facilities, row.id)
		r.tx.store.facilities[row.id] = row
		return undo, nil
	})
}

func (r *facilityRepo) InsertSpace(_ context.Context, s *facility.Space) error {
	return r.tx.write(func() (func(), error) {
		if _, ok := r.tx.store.facilities[s.FacilityID()]; !ok {
			return nil, infra.RepositoryError{Kind: infra.KindForeignKeyViolated}
		}
		undo := restore(r.tx.store.spaces, s.ID())
		r.tx.store.spaces[s.ID()] = s
		return undo, nil
	})
}

func (r *facilityRepo) FindByID(_ context.Context, id uuid.UUID) (*facility.Facility, error) {
	var (
		row facilityRow
		ok  bool
	)
	r.tx.read(func() { row, ok = r.tx.store.facilities[id] })
	if !ok {
		return nil, infra.NotFound("facility not found")
	}
	return row.entity(), nil
}

func (r *facilityRepo) FindSpace(_ context.Context, id uuid.UUID) (*facility.Space, error) {
	var (
		s  *facility.Space
		ok bool
	)
	r.tx.read(func() { s, ok = r.tx.store.spaces[id] })
	if !ok {
		return nil, infra.NotFound("space not found")
	}
	return s, nil
}

func (r *facilityRepo) IncrementBookings(_ context.Context, id uuid.UUID) error {
	return r.tx.write(func() (func(), error) {
		row, ok := r.tx.store.facilities[id]
		if !ok {
			return nil, infra.NotFound("facility not found")
		}
		undo := restore(r.tx.store.facilities, id)
		row.totalBookings++
		r.tx.store.facilities[id] = row
		return undo, nil
	})
}

func (r *facilityRepo) ListIDsByOwner(_ context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	r.tx.read(func() {
		for _, row := range r.tx.store.facilities {
			if row.ownerID == ownerID {
				ids = append(ids, row.id)
			}
		}
	})
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return ids, nil
}

type ratingRepo struct {
	tx *memTx
}

// Lock is a no-op: write transactions on the store already run one at a time.
func (r *ratingRepo) Lock(context.Context, uuid.UUID, review.Type) error { return nil }

// Upsert is last-writer-wins; the record is a full recomputation, never a delta.
func (r *ratingRepo) Upsert(_ context.Context, rec shared.RatingRecord) error {
	rec.Categories = maps.Clone(rec.Categories)
	return r.tx.write(func() (func(), error) {
		undo := restore(r.tx.store.ratings, rec.Target)
		r.tx.store.ratings[rec.Target] = rec
		return undo, nil
	})
}

func (r *ratingRepo) Get(_ context.Context, target review.Target) (*shared.RatingRecord, error) {
	var (
		rec shared.RatingRecord
		ok  bool
	)
	r.tx.read(func() { rec, ok = r.tx.store.ratings[target] })
	if !ok {
		return nil, infra.NotFound("rating not found")
	}
	rec.Categories = maps.Clone(rec.Categories)
	return &rec, nil
}
