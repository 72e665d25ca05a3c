// Package intent describes side effects the engine asks external collaborators to perform.
// Intents are dispatched after the state change commits and never block it.
package intent

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindNotification  Kind = "notification"
	KindChargeRequest Kind = "charge_request"
	KindRefundRequest Kind = "refund_request"
)

type Intent interface {
	Kind() Kind
}

type NotificationType string

const (
	BookingCreated   NotificationType = "booking_created"
	BookingConfirmed NotificationType = "booking_confirmed"
	BookingCancelled NotificationType = "booking_cancelled"
	BookingCompleted NotificationType = "booking_completed"
	PaymentReceived  NotificationType = "payment_received"
	PaymentFailed    NotificationType = "payment_failed"
	ReviewReceived   NotificationType = "new_review"
	BookingReminder  NotificationType = "booking_reminder"
	ReviewReminder   NotificationType = "review_reminder"
)

type Notification struct {
	Type        NotificationType  `json:"type"`
	RecipientID uuid.UUID         `json:"recipient_id"`
	SubjectID   uuid.UUID         `json:"subject_id"`
	Data        map[string]string `json:"data,omitempty"`
}

func (Notification) Kind() Kind { return KindNotification }

// ChargeRequest asks the payment gateway to collect Amount. The reservation id is the reference metadata
// echoed back on payment events.
type ChargeRequest struct {
	ReservationID uuid.UUID       `json:"reservation_id"`
	ConsumerID    uuid.UUID       `json:"consumer_id"`
	FacilityID    uuid.UUID       `json:"facility_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountCents   int64           `json:"amount_cents"`
	Currency      string          `json:"currency"`
}

func (ChargeRequest) Kind() Kind { return KindChargeRequest }

type RefundRequest struct {
	ReservationID    uuid.UUID       `json:"reservation_id"`
	Amount           decimal.Decimal `json:"amount"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	Currency         string          `json:"currency"`
	PaymentReference string          `json:"payment_reference"`
	InitiatedBy      uuid.UUID       `json:"initiated_by"`
	InitiatorRole    string          `json:"initiator_role"`
	Reason           string          `json:"reason,omitempty"`
}

func (RefundRequest) Kind() Kind { return KindRefundRequest }
