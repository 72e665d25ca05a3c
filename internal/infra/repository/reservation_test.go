//go:build e2e

package repository_test

import (
	"context"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"
	"facility-booking/tests/common/builder"
	"facility-booking/tests/common/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *RepositorySuite) TestReservationRepository() {
	ctx := context.Background()

	s.Run("insert and read back", func() {
		t := s.T()
		ownerID := uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")
		res := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID).Build()

		require.NoError(t, s.reservations.Insert(ctx, res))

		got, err := s.reservations.FindByID(ctx, res.ID())
		require.NoError(t, err)
		assert.Equal(t, res.ConsumerID(), got.ConsumerID())
		assert.Equal(t, reservation.StatusPending, got.Status())
		assert.True(t, res.Pricing().Total.Equal(got.Pricing().Total))
		assert.True(t, res.TimeSlot().Start().Equal(got.TimeSlot().Start()))
		assert.Equal(t, 1, got.Version())
	})

	s.Run("overlapping active reservations are rejected by the store", func() {
		t := s.T()
		ownerID := uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")
		first := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID)
		require.NoError(t, s.reservations.Insert(ctx, first.Build()))

		overlap := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID).
			WithSlot(first.Start.Add(time.Hour), first.End.Add(time.Hour)).Build()
		err := s.reservations.Insert(ctx, overlap)
		assert.True(t, infra.IsKind(err, infra.KindExclusionViolated), "got %v", err)

		adjacent := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID).
			WithSlot(first.End, first.End.Add(time.Hour)).Build()
		assert.NoError(t, s.reservations.Insert(ctx, adjacent))

		cancelled := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID).
			WithSlot(first.Start, first.End).WithStatus(reservation.StatusCancelled).Build()
		assert.NoError(t, s.reservations.Insert(ctx, cancelled), "cancelled rows do not hold the slot")
	})

	s.Run("update with a stale version", func() {
		t := s.T()
		ownerID := uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")
		res := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID).Build()
		require.NoError(t, s.reservations.Insert(ctx, res))

		a, err := s.reservations.FindByID(ctx, res.ID())
		require.NoError(t, err)
		b, err := s.reservations.FindByID(ctx, res.ID())
		require.NoError(t, err)

		require.NoError(t, s.reservations.Update(ctx, a))
		err = s.reservations.Update(ctx, b)
		assert.True(t, infra.IsKind(err, infra.KindStaleWrite), "got %v", err)

		_, err = s.reservations.FindByID(ctx, uuid.New())
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	s.Run("unknown facility is a foreign key violation", func() {
		t := s.T()
		err := s.reservations.Insert(ctx, builder.NewReservationBuilder().Build())
		assert.True(t, infra.IsKind(err, infra.KindForeignKeyViolated), "got %v", err)
	})

	s.Run("fractional durations round-trip exactly", func() {
		t := s.T()
		ownerID := uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")
		b := builder.NewReservationBuilder().WithOwnerID(ownerID).WithFacilityID(facilityID)
		res := b.WithSlot(b.Start, b.Start.Add(80*time.Minute)).Build()
		require.NoError(t, s.reservations.Insert(ctx, res))

		got, err := s.reservations.FindByID(ctx, res.ID())
		require.NoError(t, err)
		assert.True(t, res.Pricing().DurationHours.Equal(got.Pricing().DurationHours),
			"want %s, got %s", res.Pricing().DurationHours, got.Pricing().DurationHours)
		assert.True(t, res.Pricing().Total.Equal(got.Pricing().Total))
	})
}

func (s *RepositorySuite) TestListDue() {
	ctx := context.Background()

	s.Run("each sweep kind selects its own rows", func() {
		t := s.T()
		now := time.Now().UTC().Truncate(time.Second)
		ownerID := uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")

		insert := func(b *builder.ReservationBuilder, from, to time.Duration) uuid.UUID {
			t.Helper()
			res := b.WithOwnerID(ownerID).WithFacilityID(facilityID).WithSlot(now.Add(from), now.Add(to)).Build()
			require.NoError(t, s.reservations.Insert(ctx, res))
			return res.ID()
		}
		day := 24 * time.Hour

		started := insert(builder.NewReservationBuilder().AsConfirmed(), -time.Hour, time.Hour)
		ended := insert(builder.NewReservationBuilder().AsConfirmed(), -5*time.Hour, -3*time.Hour)
		unpaid := insert(builder.NewReservationBuilder().WithCreatedAt(now.Add(-2*time.Hour)), 48*time.Hour, 50*time.Hour)
		unpaidToo := insert(builder.NewReservationBuilder().WithCreatedAt(now.Add(-time.Hour)), 50*time.Hour, 52*time.Hour)
		insert(builder.NewReservationBuilder(), 52*time.Hour, 54*time.Hour)
		soon := insert(builder.NewReservationBuilder().AsConfirmed(), 10*time.Hour, 12*time.Hour)
		insert(builder.NewReservationBuilder().AsConfirmed().WithReminderSent(now.Add(-time.Hour)), 13*time.Hour, 15*time.Hour)
		insert(builder.NewReservationBuilder().AsConfirmed(), 30*time.Hour, 32*time.Hour)
		finished := insert(builder.NewReservationBuilder().AsCompleted(now.Add(-8*day)), -8*day-2*time.Hour, -8*day)
		insert(builder.NewReservationBuilder().AsCompleted(now.Add(-day)), -day-2*time.Hour, -day)

		tests := []struct {
			name   string
			filter shared.DueFilter
			want   []uuid.UUID
		}{
			{"start", shared.DueFilter{Kind: shared.SweepStart, Now: now}, []uuid.UUID{started}},
			{"complete", shared.DueFilter{Kind: shared.SweepComplete, Now: now}, []uuid.UUID{ended}},
			{"expire", shared.DueFilter{Kind: shared.SweepExpire, Now: now, Cutoff: now.Add(-30 * time.Minute)}, []uuid.UUID{unpaid, unpaidToo}},
			{"remind", shared.DueFilter{Kind: shared.SweepRemind, Now: now, Cutoff: now.Add(day)}, []uuid.UUID{soon}},
			{"review remind", shared.DueFilter{Kind: shared.SweepReviewRemind, Now: now, Cutoff: now.Add(-7 * day)}, []uuid.UUID{finished}},
			{"no limit returns every due row", shared.DueFilter{Kind: shared.SweepExpire, Now: now, Cutoff: now.Add(-30 * time.Minute), Limit: 0}, []uuid.UUID{unpaid, unpaidToo}},
		}
		for _, tt := range tests {
			got, err := s.reservations.ListDue(ctx, tt.filter)
			require.NoError(t, err, tt.name)
			assert.ElementsMatch(t, tt.want, got, tt.name)
		}

		limited, err := s.reservations.ListDue(ctx, shared.DueFilter{Kind: shared.SweepExpire, Now: now, Cutoff: now.Add(-30 * time.Minute), Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		_, err = s.reservations.ListDue(ctx, shared.DueFilter{Kind: "purge", Now: now})
		assert.Error(t, err)
	})
}
