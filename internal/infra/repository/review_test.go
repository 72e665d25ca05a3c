//go:build e2e

package repository_test

import (
	"context"
	"testing"
	"time"

	"facility-booking/internal/domain/review"
	"facility-booking/internal/infra"
	"facility-booking/internal/usecase/shared"
	"facility-booking/tests/common/builder"
	"facility-booking/tests/common/dbtest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *RepositorySuite) TestReviewRepository() {
	ctx := context.Background()

	seed := func(t *testing.T) (uuid.UUID, uuid.UUID, uuid.UUID) {
		ownerID, coachID := uuid.New(), uuid.New()
		facilityID := dbtest.CreateTestFacility(t, s.DB, ownerID, "Court", "40.00")
		resID := dbtest.CreateCompletedReservation(t, s.DB, coachID, ownerID, facilityID)
		return resID, coachID, facilityID
	}

	s.Run("insert, find and moderate", func() {
		t := s.T()
		resID, coachID, facilityID := seed(t)
		rev := builder.NewReviewBuilder().WithReservationID(resID).WithReviewerID(coachID).
			WithRevieweeID(facilityID).BuildStored()

		require.NoError(t, s.reviews.Insert(ctx, rev))

		exists, err := s.reviews.ExistsForReviewer(ctx, resID, coachID)
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.reviews.FindByID(ctx, rev.ID())
		require.NoError(t, err)
		assert.Equal(t, rev.Categories(), got.Categories())
		assert.Equal(t, builder.DefaultReviewComment, got.Comment().String())

		got.SetHidden(true, time.Now())
		require.NoError(t, s.reviews.Update(ctx, got))

		visible, err := s.reviews.ListVisible(ctx, shared.ReviewFilter{RevieweeID: facilityID, Type: review.TypeCoachToFacility})
		require.NoError(t, err)
		assert.Empty(t, visible)

		all, err := s.reviews.ListByReviewee(ctx, facilityID, review.TypeCoachToFacility)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	s.Run("one review per reviewer and reservation", func() {
		t := s.T()
		resID, coachID, facilityID := seed(t)
		b := builder.NewReviewBuilder().WithReservationID(resID).WithReviewerID(coachID).WithRevieweeID(facilityID)
		require.NoError(t, s.reviews.Insert(ctx, b.BuildStored()))

		err := s.reviews.Insert(ctx, b.WithID(uuid.New()).BuildStored())
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)
	})

	s.Run("delete", func() {
		t := s.T()
		resID, coachID, facilityID := seed(t)
		rev := builder.NewReviewBuilder().WithReservationID(resID).WithReviewerID(coachID).
			WithRevieweeID(facilityID).BuildStored()
		require.NoError(t, s.reviews.Insert(ctx, rev))

		require.NoError(t, s.reviews.Delete(ctx, rev.ID()))
		err := s.reviews.Delete(ctx, rev.ID())
		assert.True(t, infra.IsKind(err, infra.KindNotFound), "got %v", err)
	})

	s.Run("rating upsert overwrites the previous summary", func() {
		t := s.T()
		target := review.Target{Kind: review.ProfileFacility, ID: uuid.New()}

		_, err := s.ratings.Get(ctx, target)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))

		for _, avg := range []string{"3.5", "4.2"} {
			require.NoError(t, s.ratings.Upsert(ctx, shared.RatingRecord{
				Target:     target,
				Type:       review.TypeCoachToFacility,
				Average:    decimal.RequireFromString(avg),
				Categories: map[string]decimal.Decimal{"equipment": decimal.RequireFromString("4.0")},
				Count:      2,
				UpdatedAt:  time.Now().UTC(),
			}))
		}

		got, err := s.ratings.Get(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "4.2", got.Average.StringFixed(1))
		assert.Equal(t, 2, got.Count)
		assert.Equal(t, "4.0", got.Categories["equipment"].StringFixed(1))
	})
}
