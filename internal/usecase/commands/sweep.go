package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/infra/metrics"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownSweep = errs.NewKind(errs.KindValidation, "unknown sweep kind")

type SweepResult struct {
	Kind         shared.SweepKind `json:"kind"`
	Scanned      int              `json:"scanned"`
	Transitioned int              `json:"transitioned"`
	Skipped      int              `json:"skipped"`
	Failed       int              `json:"failed"`
}

type SweepCommands interface {
	Sweep(ctx context.Context, kind shared.SweepKind) (SweepResult, error)
	SweepAll(ctx context.Context) ([]SweepResult, error)
}

type SweepOptions struct {
	BatchSize   int
	Parallelism int
}

type sweepUseCaseImpl struct {
	uow        shared.UnitOfWork
	policy     reservation.Policy
	opts       SweepOptions
	dispatcher dispatcher
	clock      clock.Clock
	logger     *slog.Logger
}

func NewSweepUseCase(
	uow shared.UnitOfWork,
	policy reservation.Policy,
	opts SweepOptions,
	publisher shared.IntentPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) SweepCommands {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &sweepUseCaseImpl{
		uow:        uow,
		policy:     policy,
		opts:       opts,
		dispatcher: dispatcher{publisher: publisher, logger: logger},
		clock:      clock,
		logger:     logger,
	}
}

func (uc *sweepUseCaseImpl) SweepAll(ctx context.Context) ([]SweepResult, error) {
	kinds := []shared.SweepKind{
		shared.SweepExpire, shared.SweepStart, shared.SweepComplete, shared.SweepRemind, shared.SweepReviewRemind,
	}
	results := make([]SweepResult, 0, len(kinds))
	for _, kind := range kinds {
		res, err := uc.Sweep(ctx, kind)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Sweep transitions every due reservation of one kind. Each reservation gets its own compare-and-swap
// transaction, so overlapping runs only ever skip work the other already did.
func (uc *sweepUseCaseImpl) Sweep(ctx context.Context, kind shared.SweepKind) (SweepResult, error) {
	step, ok := uc.step(kind)
	if !ok {
		return SweepResult{}, ErrUnknownSweep
	}

	var ids []uuid.UUID
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Reservations().ListDue(ctx, uc.dueFilter(kind, uc.clock.Now()))
		return infra.Translate(err, nil)
	})
	if err != nil {
		return SweepResult{}, err
	}

	var transitioned, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			_, tr, err := applyTransition(gctx, uc.uow, id, step)
			switch {
			case err == nil && tr.Changed:
				transitioned.Add(1)
				metrics.IncSweepTransition(string(kind))
				uc.dispatcher.dispatch(gctx, tr.Intents)
			case err == nil, errors.Is(err, reservation.ErrTransitionNotDue), errors.Is(err, reservation.ErrReservationNotFound):
				skipped.Add(1)
			default:
				failed.Add(1)
				uc.logger.ErrorContext(gctx, "sweep transition failed",
					slog.String("sweep", string(kind)),
					slog.String("reservation_id", id.String()),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{
		Kind:         kind,
		Scanned:      len(ids),
		Transitioned: int(transitioned.Load()),
		Skipped:      int(skipped.Load()),
		Failed:       int(failed.Load()),
	}
	if result.Scanned > 0 {
		uc.logger.InfoContext(ctx, "sweep finished",
			slog.String("sweep", string(kind)),
			slog.Int("scanned", result.Scanned),
			slog.Int("transitioned", result.Transitioned),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed))
	}
	return result, nil
}

func (uc *sweepUseCaseImpl) dueFilter(kind shared.SweepKind, now time.Time) shared.DueFilter {
	f := shared.DueFilter{Kind: kind, Now: now, Cutoff: now, Limit: uc.opts.BatchSize}
	switch kind {
	case shared.SweepExpire:
		f.Cutoff = now.Add(-uc.policy.UnpaidTimeout)
	case shared.SweepRemind:
		f.Cutoff = now.Add(uc.policy.ReminderLead)
	case shared.SweepReviewRemind:
		f.Cutoff = now.Add(-uc.policy.ReviewReminderDelay)
	}
	return f
}

func (uc *sweepUseCaseImpl) step(kind shared.SweepKind) (transitionFunc, bool) {
	switch kind {
	case shared.SweepStart:
		return func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.Start(uc.clock.Now())
		}, true
	case shared.SweepComplete:
		return func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.Complete(uc.policy.ReviewWindow, uc.clock.Now())
		}, true
	case shared.SweepExpire:
		return func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.ExpireUnpaid(uc.policy.UnpaidTimeout, uc.clock.Now())
		}, true
	case shared.SweepRemind:
		return func(_ context.Context, _ shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
			return res.SendReminder(uc.policy.ReminderLead, uc.clock.Now())
		}, true
	case shared.SweepReviewRemind:
		return uc.remindReview, true
	default:
		return nil, false
	}
}

func (uc *sweepUseCaseImpl) remindReview(ctx context.Context, tx shared.Tx, res *reservation.Reservation) (reservation.Transition, error) {
	var reviewed []uuid.UUID
	for _, party := range []uuid.UUID{res.ConsumerID(), res.OwnerID()} {
		exists, err := tx.Reviews().ExistsForReviewer(ctx, res.ID(), party)
		if err != nil {
			return reservation.Transition{}, infra.Translate(err, nil)
		}
		if exists {
			reviewed = append(reviewed, party)
		}
	}
	return res.RemindReview(uc.policy.ReviewReminderDelay, uc.policy.ReviewWindow, reviewed, uc.clock.Now())
}
