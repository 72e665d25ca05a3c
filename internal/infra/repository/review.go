package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReviewRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReviewRepository(db DBTX, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{db: db, logger: logger}
}

const reviewColumns = `id, reservation_id, reviewer_id, reviewee_id, review_type, overall_rating,
	category_ratings, comment, hidden, reported, created_at, updated_at`

func (r *ReviewRepository) Insert(ctx context.Context, rev *review.Review) error {
	categories, err := json.Marshal(rev.Categories())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode category ratings", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rev.ID(), rev.ReservationID(), rev.ReviewerID(), rev.RevieweeID(), string(rev.Type()), rev.Overall().Value(),
		categories, rev.Comment().String(), rev.IsHidden(), rev.IsReported(), rev.CreatedAt(), rev.UpdatedAt())
	if err != nil {
		return wrapErr(r.logger, "failed to insert review", err)
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	rev, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr(r.logger, "review not found", err)
	}
	return rev, nil
}

// Update persists moderation state; content is immutable once written.
func (r *ReviewRepository) Update(ctx context.Context, rev *review.Review) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reviews SET hidden = $2, reported = $3, updated_at = $4 WHERE id = $1`,
		rev.ID(), rev.IsHidden(), rev.IsReported(), rev.UpdatedAt())
	if err != nil {
		return wrapErr(r.logger, "failed to update review", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("review not found")
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return wrapErr(r.logger, "failed to delete review", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("review not found")
	}
	return nil
}

func (r *ReviewRepository) ExistsForReviewer(ctx context.Context, reservationID, reviewerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE reservation_id = $1 AND reviewer_id = $2)`,
		reservationID, reviewerID).Scan(&exists)
	if err != nil {
		return false, wrapErr(r.logger, "failed to check existing review", err)
	}
	return exists, nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, t review.Type) ([]*review.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE reviewee_id = $1 AND review_type = $2
		ORDER BY created_at DESC, id DESC`, revieweeID, string(t))
}

func (r *ReviewRepository) ListVisible(ctx context.Context, f shared.ReviewFilter) ([]*review.Review, error) {
	args := []any{f.RevieweeID, string(f.Type)}
	query := `SELECT ` + reviewColumns + ` FROM reviews
		WHERE reviewee_id = $1 AND review_type = $2 AND NOT hidden`
	if f.After != nil {
		args = append(args, f.After.At, f.After.ID)
		query += ` AND (created_at, id) < ($3, $4)`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return r.list(ctx, query, args...)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]*review.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list reviews", err)
	}
	defer rows.Close()

	var out []*review.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, wrapErr(r.logger, "failed to scan review", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.logger, "failed to iterate reviews", err)
	}
	return out, nil
}

func scanReview(row pgx.Row) (*review.Review, error) {
	var (
		id, reservationID, reviewerID, revieweeID uuid.UUID
		reviewType, comment                       string
		overall                                   int
		rawCategories                             []byte
		hidden, reported                          bool
		createdAt, updatedAt                      time.Time
	)
	if err := row.Scan(&id, &reservationID, &reviewerID, &revieweeID, &reviewType, &overall,
		&rawCategories, &comment, &hidden, &reported, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	categories := map[string]int{}
	if len(rawCategories) > 0 {
		if err := json.Unmarshal(rawCategories, &categories); err != nil {
			return nil, err
		}
	}
	return review.ReconstructReview(id, reservationID, reviewerID, revieweeID, review.Type(reviewType), overall,
		categories, comment, hidden, reported, createdAt, updatedAt), nil
}
