package commands

import (
	"context"
	"log/slog"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownPaymentEvent = errs.NewKind(errs.KindValidation, "unknown payment event type")

type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "payment_succeeded"
	PaymentFailed    PaymentEventType = "payment_failed"
	PaymentCancelled PaymentEventType = "payment_cancelled"
	RefundCompleted  PaymentEventType = "refund_completed"
)

// PaymentEvent is a gateway callback. Gateways deliver at least once, so every handler tolerates replays.
type PaymentEvent struct {
	Type           PaymentEventType
	ReservationID  uuid.UUID
	Reference      string
	Method         string
	Reason         string
	RefundedAmount decimal.Decimal
	FullRefund     bool
}

type PaymentCommands interface {
	HandlePaymentEvent(ctx context.Context, ev PaymentEvent) (*reservation.Reservation, reservation.Transition, error)
}

type paymentUseCaseImpl struct {
	uow        shared.UnitOfWork
	policy     reservation.Policy
	dispatcher dispatcher
	clock      clock.Clock
	logger     *slog.Logger
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	policy reservation.Policy,
	publisher shared.IntentPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:        uow,
		policy:     policy,
		dispatcher: dispatcher{publisher: publisher, logger: logger},
		clock:      clock,
		logger:     logger,
	}
}

func (uc *paymentUseCaseImpl) HandlePaymentEvent(ctx context.Context, ev PaymentEvent) (*reservation.Reservation, reservation.Transition, error) {
	var fn transitionFunc
	switch ev.Type {
	case PaymentSucceeded:
		fn = func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.RecordPaymentSuccess(ev.Reference, ev.Method, uc.policy.AutoConfirmOnPayment, uc.clock.Now())
		}
	case PaymentFailed:
		fn = func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.RecordPaymentFailure(ev.Reason, uc.clock.Now())
		}
	case PaymentCancelled:
		fn = func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.AbortPayment(uc.clock.Now())
		}
	case RefundCompleted:
		fn = func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.RecordRefund(reservation.NewMoney(ev.RefundedAmount), ev.FullRefund, uc.clock.Now())
		}
	default:
		return nil, reservation.Transition{}, ErrUnknownPaymentEvent
	}

	res, tr, err := applyTransition(ctx, uc.uow, ev.ReservationID, fn)
	if err != nil {
		uc.logger.WarnContext(ctx, "payment event rejected",
			slog.String("event", string(ev.Type)),
			slog.String("reservation_id", ev.ReservationID.String()),
			slog.String("error", err.Error()))
		return nil, reservation.Transition{}, err
	}

	if !tr.Changed {
		uc.logger.InfoContext(ctx, "payment event replayed",
			slog.String("event", string(ev.Type)),
			slog.String("reservation_id", ev.ReservationID.String()))
	}
	uc.dispatcher.dispatch(ctx, tr.Intents)
	return res, tr, nil
}
