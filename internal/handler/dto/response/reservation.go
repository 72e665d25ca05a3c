package response

import (
	"time"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type PricingResponse struct {
	HourlyRate     string `json:"hourlyRate"`
	DurationHours  string `json:"durationHours"`
	CommissionRate string `json:"commissionRate"`
	Subtotal       string `json:"subtotal"`
	Commission     string `json:"commission"`
	Total          string `json:"total"`
	Currency       string `json:"currency"`
}

type PaymentResponse struct {
	Status         string `json:"status"`
	Reference      string `json:"reference,omitempty"`
	Method         string `json:"method,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
	RefundedAmount string `json:"refundedAmount"`
}

type CancellationResponse struct {
	Reason        string    `json:"reason"`
	CancelledBy   string    `json:"cancelledBy"`
	CancelledByID uuid.UUID `json:"cancelledById"`
	RefundRate    string    `json:"refundRate"`
	RefundAmount  string    `json:"refundAmount"`
	CancelledAt   time.Time `json:"cancelledAt"`
}

type ReservationResponse struct {
	ID             uuid.UUID             `json:"id"`
	ConsumerID     uuid.UUID             `json:"consumerId"`
	OwnerID        uuid.UUID             `json:"ownerId"`
	FacilityID     uuid.UUID             `json:"facilityId"`
	SpaceID        *uuid.UUID            `json:"spaceId,omitempty"`
	StartTime      time.Time             `json:"startTime"`
	EndTime        time.Time             `json:"endTime"`
	Status         string                `json:"status"`
	Pricing        PricingResponse       `json:"pricing"`
	Payment        PaymentResponse       `json:"payment"`
	Cancellation   *CancellationResponse `json:"cancellation,omitempty"`
	HasReview      bool                  `json:"hasReview"`
	ReviewDeadline *time.Time            `json:"reviewDeadline,omitempty"`
	ConfirmedAt    *time.Time            `json:"confirmedAt,omitempty"`
	StartedAt      *time.Time            `json:"startedAt,omitempty"`
	CompletedAt    *time.Time            `json:"completedAt,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	Version        int                   `json:"version"`
}

type ReservationListResponse struct {
	Items      []*ReservationResponse `json:"items"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

type ChargeRequestResponse struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
}

type PaymentEventResponse struct {
	Reservation *ReservationResponse `json:"reservation"`
	Changed     bool                 `json:"changed"`
}

func FromReservation(r *reservation.Reservation) *ReservationResponse {
	p := r.Pricing()
	pay := r.Payment()
	resp := &ReservationResponse{
		ID:         r.ID(),
		ConsumerID: r.ConsumerID(),
		OwnerID:    r.OwnerID(),
		FacilityID: r.FacilityID(),
		SpaceID:    r.SpaceID(),
		StartTime:  r.TimeSlot().Start(),
		EndTime:    r.TimeSlot().End(),
		Status:     r.Status().String(),
		Pricing: PricingResponse{
			HourlyRate:     p.HourlyRate.StringFixed(2),
			DurationHours:  p.DurationHours.String(),
			CommissionRate: p.CommissionRate.String(),
			Subtotal:       p.Subtotal.String(),
			Commission:     p.Commission.String(),
			Total:          p.Total.String(),
			Currency:       r.Currency(),
		},
		Payment: PaymentResponse{
			Status:         pay.Status.String(),
			Reference:      pay.Reference,
			Method:         pay.Method,
			FailureReason:  pay.FailureReason,
			RefundedAmount: pay.RefundedAmount.String(),
		},
		HasReview:      r.HasReview(),
		ReviewDeadline: r.ReviewDeadline(),
		ConfirmedAt:    r.ConfirmedAt(),
		StartedAt:      r.StartedAt(),
		CompletedAt:    r.CompletedAt(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
		Version:        r.Version(),
	}
	if c := r.Cancellation(); c != nil {
		resp.Cancellation = &CancellationResponse{
			Reason:        c.Reason,
			CancelledBy:   c.InitiatedBy.String(),
			CancelledByID: c.InitiatorID,
			RefundRate:    c.RefundRate.String(),
			RefundAmount:  c.RefundAmount.String(),
			CancelledAt:   c.CancelledAt,
		}
	}
	return resp
}

func FromReservationPage(page *queries.ReservationPage) *ReservationListResponse {
	items := make([]*ReservationResponse, len(page.Items))
	for i, r := range page.Items {
		items[i] = FromReservation(r)
	}
	return &ReservationListResponse{Items: items, NextCursor: page.NextCursor}
}

func FromChargeRequest(c *intent.ChargeRequest) *ChargeRequestResponse {
	return &ChargeRequestResponse{
		ReservationID: c.ReservationID,
		Amount:        c.Amount.StringFixed(2),
		AmountCents:   c.AmountCents,
		Currency:      c.Currency,
	}
}

func FromPaymentEvent(r *reservation.Reservation, t reservation.Transition) *PaymentEventResponse {
	return &PaymentEventResponse{Reservation: FromReservation(r), Changed: t.Changed}
}

type SweepResultsResponse struct {
	Results []commands.SweepResult `json:"results"`
}
