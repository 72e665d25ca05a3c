package memstore

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"time"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type reviewRow struct {
	id, reservationID, reviewerID, revieweeID uuid.UUID
	reviewType                                review.Type
	overall                                   int
	categories                                map[string]int
	comment                                   string
	hidden, reported                          bool
	createdAt, updatedAt                      time.Time
}

func toReviewRow(r *review.Review) reviewRow {
	return reviewRow{
		id:            r.ID(),
		reservationID: r.ReservationID(),
		reviewerID:    r.ReviewerID(),
		revieweeID:    r.RevieweeID(),
		reviewType:    r.Type(),
		overall:       r.Overall().Value(),
		categories:    r.Categories(),
		comment:       r.Comment().String(),
		hidden:        r.IsHidden(),
		reported:      r.IsReported(),
		createdAt:     r.CreatedAt(),
		updatedAt:     r.UpdatedAt(),
	}
}

func (row reviewRow) entity() *review.Review {
	return review.ReconstructReview(row.id, row.reservationID, row.reviewerID, row.revieweeID, row.reviewType,
		row.overall, maps.Clone(row.categories), row.comment, row.hidden, row.reported, row.createdAt, row.updatedAt)
}

type reviewRepo struct {
	tx *memTx
}

// Insert enforces one review per (reservation, reviewer).
func (r *reviewRepo) Insert(_ context.Context, rev *review.Review) error {
	row := toReviewRow(rev)
	return r.tx.write(func() (func(), error) {
		for _, other := range r.tx.store.reviews {
			if other.id == row.id || (other.reservationID == row.reservationID && other.reviewerID == row.reviewerID) {
				return nil, infra.RepositoryError{Kind: infra.KindDuplicateKey}
			}
		}
		undo := restore(r.tx.store.reviews, row.id)
		r.tx.store.reviews[row.id] = row
		return undo, nil
	})
}

func (r *reviewRepo) FindByID(_ context.Context, id uuid.UUID) (*review.Review, error) {
	var (
		row reviewRow
		ok  bool
	)
	r.tx.read(func() { row, ok = r.tx.store.reviews[id] })
	if !ok {
		return nil, infra.NotFound("review not found")
	}
	return row.entity(), nil
}

func (r *reviewRepo) Update(_ context.Context, rev *review.Review) error {
	row := toReviewRow(rev)
	return r.tx.write(func() (func(), error) {
		if _, ok := r.tx.store.reviews[row.id]; !ok {
			return nil, infra.NotFound("review not found")
		}
		undo := restore(r.tx.store.reviews, row.id)
		r.tx.store.reviews[row.id] = row
		return undo, nil
	})
}

func (r *reviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.tx.write(func() (func(), error) {
		if _, ok := r.tx.store.reviews[id]; !ok {
			return nil, infra.NotFound("review not found")
		}
		undo := restore(r.tx.store.reviews, id)
		delete(r.tx.store.reviews, id)
		return undo, nil
	})
}

func (r *reviewRepo) ExistsForReviewer(_ context.Context, reservationID, reviewerID uuid.UUID) (bool, error) {
	found := false
	r.tx.read(func() {
		for _, row := range r.tx.store.reviews {
			if row.reservationID == reservationID && row.reviewerID == reviewerID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *reviewRepo) ListByReviewee(_ context.Context, revieweeID uuid.UUID, t review.Type) ([]*review.Review, error) {
	var out []*review.Review
	r.tx.read(func() {
		for _, row := range r.tx.store.reviews {
			if row.revieweeID == revieweeID && row.reviewType == t {
				out = append(out, row.entity())
			}
		}
	})
	return out, nil
}

func (r *reviewRepo) ListVisible(_ context.Context, f shared.ReviewFilter) ([]*review.Review, error) {
	var rows []reviewRow
	r.tx.read(func() {
		for _, row := range r.tx.store.reviews {
			if row.hidden || row.revieweeID != f.RevieweeID || row.reviewType != f.Type {
				continue
			}
			if f.After != nil {
				c := row.createdAt.Compare(f.After.At)
				if c > 0 || (c == 0 && bytes.Compare(row.id[:], f.After.ID[:]) >= 0) {
					continue
				}
			}
			rows = append(rows, row)
		}
	})

	slices.SortFunc(rows, func(a, b reviewRow) int {
		if c := b.createdAt.Compare(a.createdAt); c != 0 {
			return c
		}
		return bytes.Compare(b.id[:], a.id[:])
	})
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}

	out := make([]*review.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}
