//go:build unit || e2e

package builder

import (
	"strings"
	"time"

	domreview "facility-booking/internal/domain/review"
	reqdto "facility-booking/internal/handler/dto/request"

	"github.com/google/uuid"
)

const DefaultReviewComment = "Great courts, well maintained and easy to reach."

type ReviewBuilder struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	ReviewerID    uuid.UUID
	RevieweeID    uuid.UUID
	Type          domreview.Type
	Overall       int
	Categories    map[string]int
	Comment       string
	Hidden        bool
	CreatedAt     time.Time
}

func NewReviewBuilder() *ReviewBuilder {
	return &ReviewBuilder{
		ID:            uuid.New(),
		ReservationID: uuid.New(),
		ReviewerID:    uuid.New(),
		RevieweeID:    uuid.New(),
		Type:          domreview.TypeCoachToFacility,
		Overall:       5,
		Categories:    map[string]int{"cleanliness": 5, "equipment": 4},
		Comment:       DefaultReviewComment,
		CreatedAt:     time.Now(),
	}
}

func (r *ReviewBuilder) With(mutate func(*ReviewBuilder)) *ReviewBuilder {
	mutate(r)
	return r
}

// Build methods
func (r *ReviewBuilder) Input() domreview.Input {
	return domreview.Input{
		ReservationID: r.ReservationID,
		ReviewerID:    r.ReviewerID,
		RevieweeID:    r.RevieweeID,
		Type:          r.Type,
		Overall:       r.Overall,
		Categories:    r.Categories,
		Comment:       r.Comment,
	}
}

func (r *ReviewBuilder) BuildDomain() (*domreview.Review, error) {
	return domreview.NewReview(uuid.Nil, r.Input(), r.CreatedAt)
}

// BuildStored skips validation, like a row read back from the store.
func (r *ReviewBuilder) BuildStored() *domreview.Review {
	return domreview.ReconstructReview(
		r.ID, r.ReservationID, r.ReviewerID, r.RevieweeID,
		r.Type, r.Overall, r.Categories, strings.TrimSpace(r.Comment),
		r.Hidden, false, r.CreatedAt, r.CreatedAt,
	)
}

func (r *ReviewBuilder) BuildCreateRequestDTO() reqdto.CreateReviewRequest {
	return reqdto.CreateReviewRequest{
		ReservationID: r.ReservationID,
		RevieweeID:    r.RevieweeID,
		Type:          r.Type.String(),
		Overall:       r.Overall,
		Categories:    r.Categories,
		Comment:       r.Comment,
	}
}

// Fluent builder methods
func (r *ReviewBuilder) WithID(id uuid.UUID) *ReviewBuilder {
	r.ID = id
	return r
}

func (r *ReviewBuilder) WithReservationID(id uuid.UUID) *ReviewBuilder {
	r.ReservationID = id
	return r
}

func (r *ReviewBuilder) WithReviewerID(id uuid.UUID) *ReviewBuilder {
	r.ReviewerID = id
	return r
}

func (r *ReviewBuilder) WithRevieweeID(id uuid.UUID) *ReviewBuilder {
	r.RevieweeID = id
	return r
}

func (r *ReviewBuilder) WithType(t domreview.Type) *ReviewBuilder {
	r.Type = t
	return r
}

func (r *ReviewBuilder) WithOverall(rating int) *ReviewBuilder {
	r.Overall = rating
	return r
}

func (r *ReviewBuilder) WithCategories(c map[string]int) *ReviewBuilder {
	r.Categories = c
	return r
}

func (r *ReviewBuilder) WithComment(comment string) *ReviewBuilder {
	r.Comment = comment
	return r
}

func (r *ReviewBuilder) WithHidden(hidden bool) *ReviewBuilder {
	r.Hidden = hidden
	return r
}

func (r *ReviewBuilder) WithCreatedAt(createdAt time.Time) *ReviewBuilder {
	r.CreatedAt = createdAt
	return r
}

func (r *ReviewBuilder) AsPoorRating() *ReviewBuilder {
	r.Overall = 1
	r.Comment = "Lights were broken and the floor was slippery."
	return r
}
