package queries

import (
	"context"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReviewPage struct {
	Items      []*review.Review
	NextCursor string
}

type ReviewQueries interface {
	ListReviews(ctx context.Context, revieweeID uuid.UUID, t review.Type, after string, limit int) (*ReviewPage, error)
	ReviewStats(ctx context.Context, revieweeID uuid.UUID, t review.Type) (review.Distribution, error)
	GetRatingSummary(ctx context.Context, target review.Target) (*shared.RatingRecord, error)
}

type reviewQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewReviewQueries(uow shared.UnitOfWork) ReviewQueries {
	return &reviewQueriesImpl{uow: uow}
}

// ListReviews pages visible reviews, newest first.
func (q *reviewQueriesImpl) ListReviews(ctx context.Context, revieweeID uuid.UUID, t review.Type, after string, limit int) (*ReviewPage, error) {
	if !t.IsValid() {
		return nil, review.ErrInvalidReviewType
	}
	cursor, err := DecodeAfterCursor(after)
	if err != nil {
		return nil, err
	}
	limit = ValidateLimit(limit)

	var rows []*review.Review
	err = q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rows, err = tx.Reviews().ListVisible(ctx, shared.ReviewFilter{
			RevieweeID: revieweeID,
			Type:       t,
			After:      cursor,
			Limit:      limit + 1,
		})
		return infra.Translate(err, nil)
	})
	if err != nil {
		return nil, err
	}

	page := &ReviewPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = EncodeAfterCursor(last.CreatedAt(), last.ID())
	}
	return page, nil
}

func (q *reviewQueriesImpl) ReviewStats(ctx context.Context, revieweeID uuid.UUID, t review.Type) (review.Distribution, error) {
	if !t.IsValid() {
		return review.Distribution{}, review.ErrInvalidReviewType
	}

	var reviews []*review.Review
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		reviews, err = tx.Reviews().ListByReviewee(ctx, revieweeID, t)
		return infra.Translate(err, nil)
	})
	if err != nil {
		return review.Distribution{}, err
	}
	return review.Distribute(reviews), nil
}

// GetRatingSummary returns an empty summary for profiles nobody has reviewed yet.
func (q *reviewQueriesImpl) GetRatingSummary(ctx context.Context, target review.Target) (*shared.RatingRecord, error) {
	if !target.Kind.IsValid() {
		return nil, ErrInvalidProfileKind
	}

	var rec *shared.RatingRecord
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rec, err = tx.Ratings().Get(ctx, target)
		if infra.IsKind(err, infra.KindNotFound) {
			rec = &shared.RatingRecord{
				Target:     target,
				Type:       typeForProfile(target.Kind),
				Average:    decimal.Zero,
				Categories: map[string]decimal.Decimal{},
			}
			return nil
		}
		return infra.Translate(err, nil)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func typeForProfile(kind review.ProfileKind) review.Type {
	if kind == review.ProfileCoach {
		return review.TypeFacilityToCoach
	}
	return review.TypeCoachToFacility
}
