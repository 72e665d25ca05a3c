package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"facility-booking/internal/domain/actor"
	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/infra/metrics"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../../../tests/mock/commands/commands.go -package=commandsmock facility-booking/internal/usecase/commands PaymentCommands,ReservationCommands,ReviewCommands,SweepCommands

const maxIdempotencyKeyLen = 255

// idempotencyLease bounds how long an unfinished claim blocks retries of the same key. Complete
// replaces the claim with the result for the full idempotency TTL.
const idempotencyLease = time.Minute

type CreateReservationInput struct {
	FacilityID     uuid.UUID
	SpaceID        *uuid.UUID
	Start          time.Time
	End            time.Time
	IdempotencyKey string
}

type CreateReservationResult struct {
	Reservation *reservation.Reservation
	IsReplayed  bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, a actor.Actor, in CreateReservationInput) (*CreateReservationResult, error)
	ConfirmReservation(ctx context.Context, a actor.Actor, id uuid.UUID) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, a actor.Actor, id uuid.UUID, reason string) (*reservation.Reservation, error)
	RequestPayment(ctx context.Context, a actor.Actor, id uuid.UUID) (*intent.ChargeRequest, error)
}

type reservationUseCaseImpl struct {
	uow            shared.UnitOfWork
	factory        *reservation.Factory
	policy         reservation.Policy
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	dispatcher     dispatcher
	clock          clock.Clock
	logger         *slog.Logger
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	factory *reservation.Factory,
	idempotency shared.IdempotencyStore,
	idempotencyTTL time.Duration,
	publisher shared.IntentPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:            uow,
		factory:        factory,
		policy:         factory.Policy,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		dispatcher:     dispatcher{publisher: publisher, logger: logger},
		clock:          clock,
		logger:         logger,
	}
}

func (uc *reservationUseCaseImpl) CreateReservation(ctx context.Context, a actor.Actor, in CreateReservationInput) (*CreateReservationResult, error) {
	if a.Role != actor.RoleCoach {
		return nil, errs.ErrForbidden
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		res, err := uc.createNewReservation(ctx, a.ID, in)
		if err != nil {
			return nil, err
		}
		return &CreateReservationResult{Reservation: res}, nil
	}

	if len(key) > maxIdempotencyKeyLen {
		return nil, errs.ErrIdempotencyKeyInvalid
	}

	existingID, err := uc.idempotency.Reserve(ctx, a.ID, key, idempotencyLease)
	if err != nil {
		return nil, err
	}
	if existingID != nil {
		res, err := uc.load(ctx, *existingID)
		if err != nil {
			return nil, err
		}
		return &CreateReservationResult{Reservation: res, IsReplayed: true}, nil
	}

	res, err := uc.createNewReservation(ctx, a.ID, in)
	if err != nil {
		if releaseErr := uc.idempotency.Release(ctx, a.ID, key); releaseErr != nil {
			uc.logger.WarnContext(ctx, "failed to release idempotency key", slog.String("error", releaseErr.Error()))
		}
		return nil, err
	}

	if err := uc.idempotency.Complete(ctx, a.ID, key, res.ID(), uc.idempotencyTTL); err != nil {
		uc.logger.WarnContext(ctx, "failed to store idempotency result",
			slog.String("reservation_id", res.ID().String()),
			slog.String("error", err.Error()))
	}
	return &CreateReservationResult{Reservation: res}, nil
}

// createNewReservation validates the slot against the clock, then reads every guard input and inserts
// inside one booking-scoped transaction.
func (uc *reservationUseCaseImpl) createNewReservation(ctx context.Context, consumerID uuid.UUID, in CreateReservationInput) (*reservation.Reservation, error) {
	slot, err := uc.factory.CheckSlot(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	var (
		created *reservation.Reservation
		tr      reservation.Transition
	)
	scope := shared.BookingScope{FacilityID: in.FacilityID, ConsumerID: consumerID}
	err = uc.uow.WithinBookingScope(ctx, scope, func(ctx context.Context, tx shared.Tx) error {
		fac, err := tx.Facilities().FindByID(ctx, in.FacilityID)
		if err != nil {
			return infra.Translate(err, facility.ErrFacilityNotFound)
		}

		var space *facility.Space
		if in.SpaceID != nil {
			if space, err = tx.Facilities().FindSpace(ctx, *in.SpaceID); err != nil {
				return infra.Translate(err, facility.ErrSpaceNotFound)
			}
		}

		usage, err := uc.quotaUsage(ctx, tx, consumerID, slot)
		if err != nil {
			return err
		}

		occupied, err := tx.Reservations().Occupancy(ctx, fac.ID(), slot.Start(), slot.End())
		if err != nil {
			return infra.Translate(err, nil)
		}

		res, t, err := uc.factory.CreateReservation(reservation.CreateParams{
			Facility:   fac,
			Space:      space,
			ConsumerID: consumerID,
			Slot:       slot,
			Usage:      usage,
			Occupied:   occupied,
		})
		if err != nil {
			return err
		}

		if err := tx.Reservations().Insert(ctx, res); err != nil {
			return infra.Translate(err, nil)
		}
		created, tr = res, t
		return nil
	})
	metrics.ObserveCreateDuration(time.Since(began))
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	metrics.IncReservationCreated()
	uc.logger.InfoContext(ctx, "reservation created",
		slog.String("reservation_id", created.ID().String()),
		slog.String("facility_id", created.FacilityID().String()),
		slog.String("total", created.Pricing().Total.String()))
	uc.dispatcher.dispatch(ctx, tr.Intents)
	return created, nil
}

func (uc *reservationUseCaseImpl) quotaUsage(ctx context.Context, tx shared.Tx, consumerID uuid.UUID, slot reservation.TimeSlot) (reservation.QuotaUsage, error) {
	pending, err := tx.Reservations().CountPending(ctx, consumerID)
	if err != nil {
		return reservation.QuotaUsage{}, infra.Translate(err, nil)
	}
	dayStart, dayEnd := uc.policy.DayBounds(slot.Start())
	sameDay, err := tx.Reservations().CountSameDay(ctx, consumerID, dayStart, dayEnd)
	if err != nil {
		return reservation.QuotaUsage{}, infra.Translate(err, nil)
	}
	return reservation.QuotaUsage{Pending: pending, SameDay: sameDay}, nil
}

func recordRejection(err error) {
	switch {
	case errors.Is(err, reservation.ErrSlotConflict):
		metrics.IncRejection("slot_conflict")
	case errors.Is(err, reservation.ErrTooManyPending):
		metrics.IncRejection("pending_quota")
	case errors.Is(err, reservation.ErrDailyLimitReached):
		metrics.IncRejection("daily_quota")
	}
}

func (uc *reservationUseCaseImpl) ConfirmReservation(ctx context.Context, a actor.Actor, id uuid.UUID) (*reservation.Reservation, error) {
	res, tr, err := applyTransition(ctx, uc.uow, id, func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
		return res.Confirm(a.ID, uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.dispatch(ctx, tr.Intents)
	return res, nil
}

// CancelReservation on an already cancelled reservation fails with a precondition error and emits nothing.
func (uc *reservationUseCaseImpl) CancelReservation(ctx context.Context, a actor.Actor, id uuid.UUID, reason string) (*reservation.Reservation, error) {
	res, tr, err := applyTransition(ctx, uc.uow, id, func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
		return res.Cancel(a.ID, strings.TrimSpace(reason), uc.policy, uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	c := res.Cancellation()
	uc.logger.InfoContext(ctx, "reservation cancelled",
		slog.String("reservation_id", res.ID().String()),
		slog.String("initiated_by", c.InitiatedBy.String()),
		slog.String("refund_amount", c.RefundAmount.String()))
	uc.dispatcher.dispatch(ctx, tr.Intents)
	return res, nil
}

func (uc *reservationUseCaseImpl) RequestPayment(ctx context.Context, a actor.Actor, id uuid.UUID) (*intent.ChargeRequest, error) {
	res, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	charge, err := res.RequestPayment(a.ID)
	if err != nil {
		return nil, err
	}
	uc.dispatcher.dispatch(ctx, []intent.Intent{charge})
	return &charge, nil
}

func (uc *reservationUseCaseImpl) load(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Reservations().FindByID(ctx, id)
		return infra.Translate(err, reservation.ErrReservationNotFound)
	})
	return res, err
}
