package review

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Review struct {
	id            uuid.UUID
	reservationID uuid.UUID
	reviewerID    uuid.UUID
	revieweeID    uuid.UUID
	reviewType    Type
	overall       Rating
	categories    CategoryRatings
	comment       Comment
	hidden        bool
	reported      bool
	createdAt     time.Time
	updatedAt     time.Time
}

type Input struct {
	ReservationID uuid.UUID
	ReviewerID    uuid.UUID
	RevieweeID    uuid.UUID
	Type          Type
	Overall       int
	Categories    map[string]int
	Comment       string
}

// NewReview validates the review content. Eligibility against the reservation is checked separately.
func NewReview(id uuid.UUID, in Input, now time.Time) (*Review, error) {
	if !in.Type.IsValid() {
		return nil, ErrInvalidReviewType
	}

	overall, err := NewRating(in.Overall)
	if err != nil {
		return nil, err
	}

	categories, err := NewCategoryRatings(in.Categories)
	if err != nil {
		return nil, err
	}

	comment, err := NewComment(in.Comment)
	if err != nil {
		return nil, err
	}

	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Review{
		id:            id,
		reservationID: in.ReservationID,
		reviewerID:    in.ReviewerID,
		revieweeID:    in.RevieweeID,
		reviewType:    in.Type,
		overall:       overall,
		categories:    categories,
		comment:       comment,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructReview(
	id, reservationID, reviewerID, revieweeID uuid.UUID,
	reviewType Type,
	overall int,
	categories map[string]int,
	comment string,
	hidden, reported bool,
	createdAt, updatedAt time.Time,
) *Review {
	return &Review{
		id:            id,
		reservationID: reservationID,
		reviewerID:    reviewerID,
		revieweeID:    revieweeID,
		reviewType:    reviewType,
		overall:       Rating{value: overall},
		categories:    CategoryRatings(categories),
		comment:       Comment{text: comment},
		hidden:        hidden,
		reported:      reported,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// SetHidden reports whether visibility actually changed.
func (r *Review) SetHidden(hidden bool, now time.Time) bool {
	if r.hidden == hidden {
		return false
	}
	r.hidden = hidden
	r.updatedAt = now
	return true
}

func (r *Review) Report(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrInvalidReportReason
	}
	r.reported = true
	r.updatedAt = now
	return nil
}

func (r *Review) ID() uuid.UUID               { return r.id }
func (r *Review) ReservationID() uuid.UUID    { return r.reservationID }
func (r *Review) ReviewerID() uuid.UUID       { return r.reviewerID }
func (r *Review) RevieweeID() uuid.UUID       { return r.revieweeID }
func (r *Review) Type() Type                  { return r.reviewType }
func (r *Review) Overall() Rating             { return r.overall }
func (r *Review) Categories() CategoryRatings { return maps.Clone(r.categories) }
func (r *Review) Comment() Comment            { return r.comment }
func (r *Review) IsHidden() bool              { return r.hidden }
func (r *Review) IsReported() bool            { return r.reported }
func (r *Review) CreatedAt() time.Time        { return r.createdAt }
func (r *Review) UpdatedAt() time.Time        { return r.updatedAt }
