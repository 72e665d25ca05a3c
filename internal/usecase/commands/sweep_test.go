//go:build unit

package commands_test

import (
	"testing"
	"time"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpire(t *testing.T) {
	e := newEnv(t)
	unpaid := e.create(t, e.coach(), 48*time.Hour, time.Hour)
	failed := e.create(t, e.coach(), 50*time.Hour, time.Hour)
	paid := e.create(t, e.coach(), 52*time.Hour, time.Hour)
	_, _, err := e.payments.HandlePaymentEvent(e.ctx, commands.PaymentEvent{
		Type: commands.PaymentFailed, ReservationID: failed.ID(), Reason: "insufficient_funds",
	})
	require.NoError(t, err)
	e.pay(t, paid.ID())

	e.clock.Add(29 * time.Minute)
	result, err := e.sweeps.Sweep(e.ctx, shared.SweepExpire)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)

	e.clock.Add(time.Minute)
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepExpire)
	require.NoError(t, err)
	assert.Equal(t, commands.SweepResult{Kind: shared.SweepExpire, Scanned: 2, Transitioned: 2}, result)

	assert.Equal(t, reservation.StatusCancelled, e.reload(t, unpaid.ID()).Status())
	assert.Equal(t, reservation.StatusCancelled, e.reload(t, failed.ID()).Status())
	assert.Equal(t, reservation.StatusConfirmed, e.reload(t, paid.ID()).Status())
	assert.Equal(t, reservation.ReasonUnpaidExpired, e.reload(t, unpaid.ID()).Cancellation().Reason)

	// A second run finds nothing left to do.
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepExpire)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
}

func TestSweepStartAndComplete(t *testing.T) {
	e := newEnv(t)
	res := e.create(t, e.coach(), 48*time.Hour, 2*time.Hour)
	e.pay(t, res.ID())
	start := res.TimeSlot().Start()

	e.clock.Set(start.Add(-time.Minute))
	result, err := e.sweeps.Sweep(e.ctx, shared.SweepStart)
	require.NoError(t, err)
	assert.Zero(t, result.Transitioned)

	e.clock.Set(start)
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepStart)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitioned)
	assert.Equal(t, reservation.StatusInProgress, e.reload(t, res.ID()).Status())

	e.publisher.reset()
	e.clock.Set(res.TimeSlot().End())
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepComplete)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitioned)

	done := e.reload(t, res.ID())
	assert.Equal(t, reservation.StatusCompleted, done.Status())
	require.NotNil(t, done.ReviewDeadline())
	assert.True(t, done.ReviewDeadline().Equal(res.TimeSlot().End().Add(e.policy.ReviewWindow)))
	assert.Len(t, e.publisher.notifications(intent.BookingCompleted), 2)
}

func TestSweepAll(t *testing.T) {
	e := newEnv(t)
	confirmed := e.create(t, e.coach(), 48*time.Hour, 2*time.Hour)
	e.pay(t, confirmed.ID())
	unpaid := e.create(t, e.coach(), 72*time.Hour, 2*time.Hour)

	// Past the slot end: a confirmed booking that was never started is completed directly.
	e.clock.Set(confirmed.TimeSlot().End().Add(time.Minute))
	results, err := e.sweeps.SweepAll(e.ctx)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, shared.SweepExpire, results[0].Kind)
	assert.Equal(t, 1, results[0].Transitioned)
	assert.Equal(t, shared.SweepStart, results[1].Kind)
	assert.Zero(t, results[1].Transitioned)
	assert.Equal(t, shared.SweepComplete, results[2].Kind)
	assert.Equal(t, 1, results[2].Transitioned)
	assert.Equal(t, shared.SweepRemind, results[3].Kind)
	assert.Equal(t, shared.SweepReviewRemind, results[4].Kind)
	assert.Zero(t, results[4].Transitioned, "completed a minute ago")

	assert.Equal(t, reservation.StatusCancelled, e.reload(t, unpaid.ID()).Status())
	assert.Equal(t, reservation.StatusCompleted, e.reload(t, confirmed.ID()).Status())
}

func TestSweepRemind(t *testing.T) {
	e := newEnv(t)
	paid := e.create(t, e.coach(), 48*time.Hour, time.Hour)
	e.pay(t, paid.ID())
	unpaid := e.create(t, e.coach(), 50*time.Hour, time.Hour)
	start := paid.TimeSlot().Start()

	e.clock.Set(start.Add(-e.policy.ReminderLead - time.Second))
	result, err := e.sweeps.Sweep(e.ctx, shared.SweepRemind)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)

	e.publisher.reset()
	e.clock.Set(start.Add(-e.policy.ReminderLead))
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepRemind)
	require.NoError(t, err)
	assert.Equal(t, commands.SweepResult{Kind: shared.SweepRemind, Scanned: 1, Transitioned: 1}, result)

	reminders := e.publisher.notifications(intent.BookingReminder)
	require.Len(t, reminders, 2)
	assert.Equal(t, paid.ID(), reminders[0].SubjectID)

	got := e.reload(t, paid.ID())
	assert.Equal(t, reservation.StatusConfirmed, got.Status())
	require.NotNil(t, got.ReminderSentAt())
	assert.Nil(t, e.reload(t, unpaid.ID()).ReminderSentAt(), "unpaid bookings are not reminded")

	e.clock.Add(time.Hour)
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepRemind)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned, "a booking is reminded once")
}

func TestSweepReviewRemind(t *testing.T) {
	e := newEnv(t)
	coach := e.coach()
	res := e.completed(t, coach)
	require.NotNil(t, res.CompletedAt())
	completedAt := *res.CompletedAt()

	_, err := e.reviews.CreateReview(e.ctx, coach, coachReview(e.facility.ID(), res.ID(), 4))
	require.NoError(t, err)

	e.clock.Set(completedAt.Add(e.policy.ReviewReminderDelay - time.Second))
	result, err := e.sweeps.Sweep(e.ctx, shared.SweepReviewRemind)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)

	e.publisher.reset()
	e.clock.Set(completedAt.Add(e.policy.ReviewReminderDelay))
	result, err = e.sweeps.Sweep(e.ctx, shared.SweepReviewRemind)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitioned)

	// the coach already reviewed, only the owner is nudged
	reminders := e.publisher.notifications(intent.ReviewReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, e.owner.ID, reminders[0].RecipientID)

	result, err = e.sweeps.Sweep(e.ctx, shared.SweepReviewRemind)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
}

func TestSweepReviewRemindAfterWindow(t *testing.T) {
	e := newEnv(t)
	res := e.completed(t, e.coach())

	e.clock.Set(res.ReviewDeadline().Add(time.Second))
	result, err := e.sweeps.Sweep(e.ctx, shared.SweepReviewRemind)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
}

func TestSweepUnlimitedBatch(t *testing.T) {
	e := newEnv(t)
	for i := range 4 {
		e.create(t, e.coach(), 48*time.Hour+time.Duration(i)*time.Hour, time.Hour)
	}
	e.clock.Add(time.Hour)
	sweeps := commands.NewSweepUseCase(e.uow, e.policy, commands.SweepOptions{BatchSize: 0}, e.publisher, e.clock, e.logger)

	result, err := sweeps.Sweep(e.ctx, shared.SweepExpire)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Transitioned)
}

func TestSweepBatches(t *testing.T) {
	e := newEnv(t)
	for i := range 7 {
		e.create(t, e.coach(), 48*time.Hour+time.Duration(i)*time.Hour, time.Hour)
	}
	e.clock.Add(time.Hour)
	sweeps := commands.NewSweepUseCase(e.uow, e.policy, commands.SweepOptions{BatchSize: 3, Parallelism: 2}, e.publisher, e.clock, e.logger)

	var scanned []int
	for range 10 {
		result, err := sweeps.Sweep(e.ctx, shared.SweepExpire)
		require.NoError(t, err)
		assert.Equal(t, result.Scanned, result.Transitioned)
		if result.Scanned == 0 {
			break
		}
		scanned = append(scanned, result.Scanned)
	}
	assert.Equal(t, []int{3, 3, 1}, scanned)
}

func TestSweepUnknownKind(t *testing.T) {
	e := newEnv(t)
	_, err := e.sweeps.Sweep(e.ctx, "archive")
	assert.ErrorIs(t, err, commands.ErrUnknownSweep)
}
