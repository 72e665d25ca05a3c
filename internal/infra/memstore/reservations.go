package memstore

import (
	"bytes"
	"context"
	"slices"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type reservationRepo struct {
	tx *memTx
}

// Insert mirrors the database exclusion constraint on active intervals.
func (r *reservationRepo) Insert(_ context.Context, res *reservation.Reservation) error {
	s := res.State()
	return r.tx.write(func() (func(), error) {
		if _, ok := r.tx.store.reservations[s.ID]; ok {
			return nil, infra.RepositoryError{Kind: infra.KindDuplicateKey}
		}
		if s.Status.IsActive() {
			for _, other := range r.tx.store.reservations {
				if other.FacilityID == s.FacilityID && other.Status.IsActive() &&
					reservation.Overlaps(s.Start, s.End, other.Start, other.End) {
					return nil, infra.RepositoryError{Kind: infra.KindExclusionViolated}
				}
			}
		}
		undo := restore(r.tx.store.reservations, s.ID)
		r.tx.store.reservations[s.ID] = s
		return undo, nil
	})
}

func (r *reservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var (
		s  reservation.State
		ok bool
	)
	r.tx.read(func() { s, ok = r.tx.store.reservations[id] })
	if !ok {
		return nil, infra.NotFound("reservation not found")
	}
	return reservation.Reconstruct(s), nil
}

func (r *reservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	s := res.State()
	return r.tx.write(func() (func(), error) {
		current, ok := r.tx.store.reservations[s.ID]
		if !ok {
			return nil, infra.NotFound("reservation not found")
		}
		if current.Version != s.Version {
			return nil, infra.StaleWrite("reservation version changed")
		}
		undo := restore(r.tx.store.reservations, s.ID)
		s.Version++
		r.tx.store.reservations[s.ID] = s
		return undo, nil
	})
}

func (r *reservationRepo) Occupancy(_ context.Context, facilityID uuid.UUID, from, to time.Time) ([]reservation.Occupancy, error) {
	var out []reservation.Occupancy
	r.tx.read(func() {
		for _, s := range r.tx.store.reservations {
			if s.FacilityID != facilityID || !s.Status.IsActive() || !reservation.Overlaps(from, to, s.Start, s.End) {
				continue
			}
			out = append(out, reservation.Occupancy{ReservationID: s.ID, Start: s.Start, End: s.End, Status: s.Status})
		}
	})
	return out, nil
}

func (r *reservationRepo) CountPending(_ context.Context, consumerID uuid.UUID) (int, error) {
	n := 0
	r.tx.read(func() {
		for _, s := range r.tx.store.reservations {
			if s.ConsumerID == consumerID && s.Status == reservation.StatusPending {
				n++
			}
		}
	})
	return n, nil
}

func (r *reservationRepo) CountSameDay(_ context.Context, consumerID uuid.UUID, dayStart, dayEnd time.Time) (int, error) {
	n := 0
	r.tx.read(func() {
		for _, s := range r.tx.store.reservations {
			if s.ConsumerID != consumerID || !slices.Contains(reservation.QuotaStatuses, s.Status) {
				continue
			}
			if !s.Start.Before(dayStart) && !s.Start.After(dayEnd) {
				n++
			}
		}
	})
	return n, nil
}

func (r *reservationRepo) ListDue(_ context.Context, f shared.DueFilter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	r.tx.read(func() {
		for _, s := range r.tx.store.reservations {
			if isDue(f, s) {
				ids = append(ids, s.ID)
			}
		}
	})
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	if f.Limit > 0 && len(ids) > f.Limit {
		ids = ids[:f.Limit]
	}
	return ids, nil
}

func isDue(f shared.DueFilter, s reservation.State) bool {
	switch f.Kind {
	case shared.SweepStart:
		return s.Status == reservation.StatusConfirmed && !f.Now.Before(s.Start) && f.Now.Before(s.End)
	case shared.SweepComplete:
		return (s.Status == reservation.StatusConfirmed || s.Status == reservation.StatusInProgress) && !f.Now.Before(s.End)
	case shared.SweepExpire:
		return s.Status == reservation.StatusPending && s.Payment.Status != reservation.PaymentSucceeded &&
			!s.CreatedAt.After(f.Cutoff)
	case shared.SweepRemind:
		return s.Status == reservation.StatusConfirmed && s.ReminderSentAt == nil &&
			s.Start.After(f.Now) && !s.Start.After(f.Cutoff)
	case shared.SweepReviewRemind:
		return s.Status == reservation.StatusCompleted && s.ReviewReminderSentAt == nil &&
			s.CompletedAt != nil && !s.CompletedAt.After(f.Cutoff) &&
			(s.ReviewDeadline == nil || !s.ReviewDeadline.Before(f.Now))
	default:
		return false
	}
}

func (r *reservationRepo) List(_ context.Context, f shared.ReservationFilter) ([]*reservation.Reservation, error) {
	var rows []reservation.State
	r.tx.read(func() {
		for _, s := range r.tx.store.reservations {
			if matchesFilter(s, f) {
				rows = append(rows, s)
			}
		}
	})

	slices.SortFunc(rows, func(a, b reservation.State) int {
		if c := b.Start.Compare(a.Start); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}

	out := make([]*reservation.Reservation, 0, len(rows))
	for _, s := range rows {
		out = append(out, reservation.Reconstruct(s))
	}
	return out, nil
}

func matchesFilter(s reservation.State, f shared.ReservationFilter) bool {
	if f.ParticipantID != nil {
		id := *f.ParticipantID
		switch f.Role {
		case shared.AsConsumer:
			if s.ConsumerID != id {
				return false
			}
		case shared.AsOwner:
			if s.OwnerID != id {
				return false
			}
		default:
			if s.ConsumerID != id && s.OwnerID != id {
				return false
			}
		}
	}
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.After != nil {
		// keyset: strictly after the cursor in (start desc, id desc) order
		if c := s.Start.Compare(f.After.At); c > 0 || (c == 0 && bytes.Compare(s.ID[:], f.After.ID[:]) >= 0) {
			return false
		}
	}
	return true
}
