package response

import (
	"time"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/usecase/queries"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReviewResponse struct {
	ID            uuid.UUID      `json:"id"`
	ReservationID uuid.UUID      `json:"reservationId"`
	ReviewerID    uuid.UUID      `json:"reviewerId"`
	RevieweeID    uuid.UUID      `json:"revieweeId"`
	Type          string         `json:"type"`
	Overall       int            `json:"overall"`
	Categories    map[string]int `json:"categories"`
	Comment       string         `json:"comment"`
	Hidden        bool           `json:"hidden"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type ReviewListResponse struct {
	Items      []*ReviewResponse `json:"items"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type ReviewStatsResponse struct {
	Total        int            `json:"total"`
	Average      string         `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type RatingSummaryResponse struct {
	ProfileKind string            `json:"profileKind"`
	ProfileID   uuid.UUID         `json:"profileId"`
	ReviewType  string            `json:"reviewType"`
	Average     string            `json:"average"`
	Categories  map[string]string `json:"categories"`
	Count       int               `json:"count"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

func FromReview(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:            r.ID(),
		ReservationID: r.ReservationID(),
		ReviewerID:    r.ReviewerID(),
		RevieweeID:    r.RevieweeID(),
		Type:          string(r.Type()),
		Overall:       r.Overall().Value(),
		Categories:    r.Categories(),
		Comment:       r.Comment().String(),
		Hidden:        r.IsHidden(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

func FromReviewPage(page *queries.ReviewPage) *ReviewListResponse {
	items := make([]*ReviewResponse, len(page.Items))
	for i, r := range page.Items {
		items[i] = FromReview(r)
	}
	return &ReviewListResponse{Items: items, NextCursor: page.NextCursor}
}

func FromDistribution(d review.Distribution) *ReviewStatsResponse {
	dist := make(map[string]int, len(d.Counts))
	for i, n := range d.Counts {
		dist[string(rune('1'+i))] = n
	}
	return &ReviewStatsResponse{
		Total:        d.Total,
		Average:      d.Average.StringFixed(1),
		Distribution: dist,
	}
}

func FromRatingRecord(rec *shared.RatingRecord) *RatingSummaryResponse {
	categories := make(map[string]string, len(rec.Categories))
	for k, v := range rec.Categories {
		categories[k] = v.StringFixed(1)
	}
	resp := &RatingSummaryResponse{
		ProfileKind: string(rec.Target.Kind),
		ProfileID:   rec.Target.ID,
		ReviewType:  string(rec.Type),
		Average:     rec.Average.StringFixed(1),
		Categories:  categories,
		Count:       rec.Count,
	}
	if !rec.UpdatedAt.IsZero() {
		t := rec.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}
