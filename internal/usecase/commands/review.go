package commands

import (
	"context"
	"log/slog"
	"time"

	"facility-booking/internal/domain/actor"
	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	domreview "facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReviewInput struct {
	ReservationID uuid.UUID
	RevieweeID    uuid.UUID
	Type          domreview.Type
	Overall       int
	Categories    map[string]int
	Comment       string
}

type ReviewCommands interface {
	CreateReview(ctx context.Context, a actor.Actor, in CreateReviewInput) (*domreview.Review, error)
	DeleteReview(ctx context.Context, a actor.Actor, reviewID uuid.UUID) error
	SetReviewVisibility(ctx context.Context, a actor.Actor, reviewID uuid.UUID, hidden bool) (*domreview.Review, error)
	ReportReview(ctx context.Context, a actor.Actor, reviewID uuid.UUID, reason string) error
}

type reviewUseCaseImpl struct {
	uow          shared.UnitOfWork
	reviewWindow time.Duration
	ratingWindow int
	dispatcher   dispatcher
	clock        clock.Clock
	logger       *slog.Logger
}

func NewReviewUseCase(
	uow shared.UnitOfWork,
	policy reservation.Policy,
	ratingWindow int,
	publisher shared.IntentPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) ReviewCommands {
	return &reviewUseCaseImpl{
		uow:          uow,
		reviewWindow: policy.ReviewWindow,
		ratingWindow: ratingWindow,
		dispatcher:   dispatcher{publisher: publisher, logger: logger},
		clock:        clk,
		logger:       logger,
	}
}

func (uc *reviewUseCaseImpl) CreateReview(ctx context.Context, a actor.Actor, in CreateReviewInput) (*domreview.Review, error) {
	if !in.Type.IsValid() {
		return nil, domreview.ErrInvalidReviewType
	}

	var (
		created *domreview.Review
		notify  intent.Notification
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, in.ReservationID)
		if err != nil {
			return infra.Translate(err, reservation.ErrReservationNotFound)
		}

		exists, err := tx.Reviews().ExistsForReviewer(ctx, res.ID(), a.ID)
		if err != nil {
			return infra.Translate(err, nil)
		}

		now := uc.clock.Now()
		if err := domreview.CheckEligibility(domreview.EligibilityInput{
			Reservation:     res,
			ReviewerID:      a.ID,
			RevieweeID:      in.RevieweeID,
			Type:            in.Type,
			AlreadyReviewed: exists,
			Window:          uc.reviewWindow,
			Now:             now,
		}); err != nil {
			return err
		}

		rev, err := domreview.NewReview(uuid.Nil, domreview.Input{
			ReservationID: res.ID(),
			ReviewerID:    a.ID,
			RevieweeID:    in.RevieweeID,
			Type:          in.Type,
			Overall:       in.Overall,
			Categories:    in.Categories,
			Comment:       in.Comment,
		}, now)
		if err != nil {
			return err
		}

		if err := tx.Reviews().Insert(ctx, rev); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return domreview.ErrReviewAlreadyExists
			}
			return infra.Translate(err, nil)
		}

		res.MarkReviewed(now)
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return infra.Translate(err, reservation.ErrReservationNotFound)
		}

		if err := uc.recompute(ctx, tx, rev.RevieweeID(), rev.Type(), uc.ratingWindow); err != nil {
			return err
		}

		created = rev
		notify = intent.Notification{
			Type:        intent.ReviewReceived,
			RecipientID: domreview.RecipientFor(rev.Type(), res),
			SubjectID:   rev.ID(),
			Data: map[string]string{
				"reservation_id": res.ID().String(),
				"review_type":    rev.Type().String(),
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.dispatcher.dispatch(ctx, []intent.Intent{notify})
	return created, nil
}

// DeleteReview is allowed to the author and to admins. The reservation keeps its reviewed flag.
func (uc *reviewUseCaseImpl) DeleteReview(ctx context.Context, a actor.Actor, reviewID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rev, err := tx.Reviews().FindByID(ctx, reviewID)
		if err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		if rev.ReviewerID() != a.ID && !a.IsAdmin() {
			return domreview.ErrNotAuthor
		}
		if err := tx.Reviews().Delete(ctx, reviewID); err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		return uc.recompute(ctx, tx, rev.RevieweeID(), rev.Type(), 0)
	})
}

func (uc *reviewUseCaseImpl) SetReviewVisibility(ctx context.Context, a actor.Actor, reviewID uuid.UUID, hidden bool) (*domreview.Review, error) {
	if !a.IsAdmin() {
		return nil, domreview.ErrModeratorOnly
	}

	var out *domreview.Review
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rev, err := tx.Reviews().FindByID(ctx, reviewID)
		if err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		out = rev
		if !rev.SetHidden(hidden, uc.clock.Now()) {
			return nil
		}
		if err := tx.Reviews().Update(ctx, rev); err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		return uc.recompute(ctx, tx, rev.RevieweeID(), rev.Type(), 0)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *reviewUseCaseImpl) ReportReview(ctx context.Context, a actor.Actor, reviewID uuid.UUID, reason string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rev, err := tx.Reviews().FindByID(ctx, reviewID)
		if err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		if err := rev.Report(reason, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Reviews().Update(ctx, rev); err != nil {
			return infra.Translate(err, domreview.ErrReviewNotFound)
		}
		uc.logger.InfoContext(ctx, "review reported",
			slog.String("review_id", reviewID.String()),
			slog.String("reporter_id", a.ID.String()))
		return nil
	})
}

// recompute rebuilds the reviewee's summary from the stored reviews and writes it to every profile
// the reviewee resolves to. window <= 0 averages all visible reviews. The reviewee lock is taken before
// the read so a concurrent review committed in between is never left out of the stored summary.
func (uc *reviewUseCaseImpl) recompute(ctx context.Context, tx shared.Tx, revieweeID uuid.UUID, t domreview.Type, window int) error {
	if err := tx.Ratings().Lock(ctx, revieweeID, t); err != nil {
		return infra.Translate(err, nil)
	}
	reviews, err := tx.Reviews().ListByReviewee(ctx, revieweeID, t)
	if err != nil {
		return infra.Translate(err, nil)
	}
	summary := domreview.Aggregate(reviews, window)

	targets, err := resolveTargets(ctx, tx, t, revieweeID)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	for _, target := range targets {
		if err := tx.Ratings().Upsert(ctx, shared.RatingRecord{
			Target:     target,
			Type:       t,
			Average:    summary.Average,
			Categories: summary.Categories,
			Count:      summary.Count,
			UpdatedAt:  now,
		}); err != nil {
			return infra.Translate(err, nil)
		}
	}
	return nil
}

func resolveTargets(ctx context.Context, tx shared.Tx, t domreview.Type, revieweeID uuid.UUID) ([]domreview.Target, error) {
	if t == domreview.TypeFacilityToCoach {
		return domreview.ResolveTargets(t, revieweeID, false, nil), nil
	}

	_, err := tx.Facilities().FindByID(ctx, revieweeID)
	switch {
	case err == nil:
		return domreview.ResolveTargets(t, revieweeID, true, nil), nil
	case infra.IsKind(err, infra.KindNotFound):
		owned, err := tx.Facilities().ListIDsByOwner(ctx, revieweeID)
		if err != nil {
			return nil, infra.Translate(err, nil)
		}
		return domreview.ResolveTargets(t, revieweeID, false, owned), nil
	default:
		return nil, infra.Translate(err, nil)
	}
}
