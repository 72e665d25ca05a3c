package request

import (
	"facility-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentEventRequest struct {
	Type           string           `json:"type" binding:"required"`
	ReservationID  uuid.UUID        `json:"reservationId" binding:"required"`
	Reference      string           `json:"reference,omitempty"`
	Method         string           `json:"method,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	RefundedAmount *decimal.Decimal `json:"refundedAmount,omitempty"`
	FullRefund     bool             `json:"fullRefund,omitempty"`
}

func (r PaymentEventRequest) ToEvent() commands.PaymentEvent {
	refunded := decimal.Zero
	if r.RefundedAmount != nil {
		refunded = *r.RefundedAmount
	}
	return commands.PaymentEvent{
		Type:           commands.PaymentEventType(r.Type),
		ReservationID:  r.ReservationID,
		Reference:      r.Reference,
		Method:         r.Method,
		Reason:         r.Reason,
		RefundedAmount: refunded,
		FullRefund:     r.FullRefund,
	}
}

type RunSweepRequest struct {
	// empty runs every sweep
	Kind string `json:"kind" binding:"omitempty,oneof=start complete expire remind review_remind"`
}
