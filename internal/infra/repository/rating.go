package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/pkg/pgconv"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RatingRepository stores the derived per-profile summaries. Rows are recomputed wholesale, never patched.
type RatingRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewRatingRepository(db DBTX, logger *slog.Logger) *RatingRepository {
	return &RatingRepository{db: db, logger: logger}
}

// Lock serializes summary recomputation for one reviewee until the transaction ends.
func (r *RatingRepository) Lock(ctx context.Context, revieweeID uuid.UUID, t review.Type) error {
	if err := AdvisoryLock(ctx, r.db, "rating:"+string(t)+":"+revieweeID.String()); err != nil {
		return wrapErr(r.logger, "failed to lock rating summary", err)
	}
	return nil
}

func (r *RatingRepository) Upsert(ctx context.Context, rec shared.RatingRecord) error {
	categories := make(map[string]string, len(rec.Categories))
	for k, v := range rec.Categories {
		categories[k] = v.String()
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode category averages", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO profile_ratings (profile_kind, profile_id, review_type, average_rating, category_averages, review_count, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		ON CONFLICT (profile_kind, profile_id) DO UPDATE SET
			review_type = EXCLUDED.review_type,
			average_rating = EXCLUDED.average_rating,
			category_averages = EXCLUDED.category_averages,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at`,
		string(rec.Target.Kind), rec.Target.ID, string(rec.Type), pgconv.DecimalToText(rec.Average), raw, rec.Count,
		rec.UpdatedAt)
	if err != nil {
		return wrapErr(r.logger, "failed to upsert profile rating", err)
	}
	return nil
}

func (r *RatingRepository) Get(ctx context.Context, target review.Target) (*shared.RatingRecord, error) {
	var (
		rec        = shared.RatingRecord{Target: target}
		reviewType string
		average    string
		raw        []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT review_type, average_rating::text, category_averages, review_count, updated_at
		FROM profile_ratings WHERE profile_kind = $1 AND profile_id = $2`,
		string(target.Kind), target.ID).Scan(&reviewType, &average, &raw, &rec.Count, &rec.UpdatedAt)
	if err != nil {
		return nil, wrapErr(r.logger, "profile rating not found", err)
	}

	rec.Type = review.Type(reviewType)
	if rec.Average, err = pgconv.DecimalFromText(average); err != nil {
		return nil, wrapErr(r.logger, "failed to parse average rating", err)
	}

	var categories map[string]string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, wrapErr(r.logger, "failed to decode category averages", err)
	}
	rec.Categories = make(map[string]decimal.Decimal, len(categories))
	for k, v := range categories {
		d, err := pgconv.DecimalFromText(v)
		if err != nil {
			return nil, wrapErr(r.logger, "failed to parse category average", err)
		}
		rec.Categories[k] = d
	}
	return &rec, nil
}
