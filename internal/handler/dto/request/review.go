package request

import (
	domreview "facility-booking/internal/domain/review"
	"facility-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

// Range and length checks live in the domain so the rules hold for every caller.
type CreateReviewRequest struct {
	ReservationID uuid.UUID      `json:"reservationId" binding:"required"`
	RevieweeID    uuid.UUID      `json:"revieweeId" binding:"required"`
	Type          string         `json:"type" binding:"required"`
	Overall       int            `json:"overall" binding:"required"`
	Categories    map[string]int `json:"categories,omitempty"`
	Comment       string         `json:"comment" binding:"required"`
}

func (r CreateReviewRequest) ToInput() commands.CreateReviewInput {
	return commands.CreateReviewInput{
		ReservationID: r.ReservationID,
		RevieweeID:    r.RevieweeID,
		Type:          domreview.Type(r.Type),
		Overall:       r.Overall,
		Categories:    r.Categories,
		Comment:       r.Comment,
	}
}

type SetReviewVisibilityRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

type ReportReviewRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ListReviewsRequest struct {
	RevieweeID uuid.UUID `form:"revieweeId" binding:"required"`
	Type       string    `form:"type" binding:"required"`
	Cursor     string    `form:"cursor"`
	Limit      int       `form:"limit" binding:"omitempty,min=1,max=200"`
}

type ReviewStatsRequest struct {
	RevieweeID uuid.UUID `form:"revieweeId" binding:"required"`
	Type       string    `form:"type" binding:"required"`
}
