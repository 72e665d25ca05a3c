package commands

import (
	"context"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/infra/metrics"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type transitionFunc func(ctx context.Context, tx shared.Tx, res *reservation.Reservation) (reservation.Transition, error)

// applyTransition is the read-modify-write cycle shared by every single-reservation command.
// The write is a compare-and-swap on the version read here; a lost race re-runs fn on fresh state.
func applyTransition(ctx context.Context, uow shared.UnitOfWork, id uuid.UUID, fn transitionFunc) (*reservation.Reservation, reservation.Transition, error) {
	var (
		out *reservation.Reservation
		tr  reservation.Transition
	)
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return infra.Translate(err, reservation.ErrReservationNotFound)
		}

		t, err := fn(ctx, tx, res)
		if err != nil {
			return err
		}

		if t.Changed {
			if err := tx.Reservations().Update(ctx, res); err != nil {
				return infra.Translate(err, reservation.ErrReservationNotFound)
			}
		}
		if t.Confirmed() {
			if err := tx.Facilities().IncrementBookings(ctx, res.FacilityID()); err != nil {
				return infra.Translate(err, nil)
			}
		}

		out, tr = res, t
		return nil
	})
	if err != nil {
		return nil, reservation.Transition{}, err
	}

	if tr.Changed && tr.From != tr.To {
		metrics.IncTransition(tr.To.String())
	}
	return out, tr, nil
}
