//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2030, 8, 1, 12, 0, 0, 0, time.UTC)
	testStart = testNow.Add(72 * time.Hour)
)

func pending() *builder.ReservationBuilder {
	return builder.NewReservationBuilder().
		WithSlot(testStart, testStart.Add(2*time.Hour)).
		WithHourlyRate("50").
		WithCreatedAt(testNow)
}

func intentsOf[T intent.Intent](tr reservation.Transition) []T {
	var out []T
	for _, in := range tr.Intents {
		if v, ok := in.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestReservationConfirm(t *testing.T) {
	t.Run("owner confirms a paid booking", func(t *testing.T) {
		b := pending().WithPayment(reservation.PaymentSucceeded)
		r := b.Build()

		tr, err := r.Confirm(b.OwnerID, testNow)
		require.NoError(t, err)
		assert.True(t, tr.Confirmed())
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
		require.NotNil(t, r.ConfirmedAt())

		notes := intentsOf[intent.Notification](tr)
		require.Len(t, notes, 1)
		assert.Equal(t, intent.BookingConfirmed, notes[0].Type)
		assert.Equal(t, b.ConsumerID, notes[0].RecipientID)
	})

	t.Run("guards", func(t *testing.T) {
		unpaid := pending()
		paid := pending().WithPayment(reservation.PaymentSucceeded)
		confirmed := pending().AsConfirmed()

		cases := []struct {
			name    string
			b       *builder.ReservationBuilder
			actor   func(*builder.ReservationBuilder) uuid.UUID
			wantErr error
		}{
			{name: "consumer cannot confirm", b: paid, actor: func(b *builder.ReservationBuilder) uuid.UUID { return b.ConsumerID }, wantErr: reservation.ErrNotOwner},
			{name: "unpaid booking", b: unpaid, actor: func(b *builder.ReservationBuilder) uuid.UUID { return b.OwnerID }, wantErr: reservation.ErrPaymentNotSucceeded},
			{name: "already confirmed", b: confirmed, actor: func(b *builder.ReservationBuilder) uuid.UUID { return b.OwnerID }, wantErr: reservation.ErrNotPending},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				r := c.b.Build()
				_, err := r.Confirm(c.actor(c.b), testNow)
				assert.ErrorIs(t, err, c.wantErr)
			})
		}
	})
}

func TestReservationPaymentEvents(t *testing.T) {
	t.Run("success auto-confirms", func(t *testing.T) {
		b := pending()
		r := b.Build()

		tr, err := r.RecordPaymentSuccess("pi_1", "card", true, testNow)
		require.NoError(t, err)
		assert.True(t, tr.Confirmed())
		assert.Equal(t, reservation.PaymentSucceeded, r.Payment().Status)
		assert.Equal(t, "pi_1", r.Payment().Reference)

		notes := intentsOf[intent.Notification](tr)
		require.Len(t, notes, 2)
		assert.Equal(t, intent.PaymentReceived, notes[0].Type)
		assert.Equal(t, b.OwnerID, notes[0].RecipientID)
		assert.Equal(t, intent.BookingConfirmed, notes[1].Type)
	})

	t.Run("success without auto-confirm stays pending", func(t *testing.T) {
		r := pending().Build()
		tr, err := r.RecordPaymentSuccess("pi_1", "card", false, testNow)
		require.NoError(t, err)
		assert.True(t, tr.Changed)
		assert.False(t, tr.Confirmed())
		assert.Equal(t, reservation.StatusPending, r.Status())
	})

	t.Run("replayed success is a no-op", func(t *testing.T) {
		r := pending().Build()
		_, err := r.RecordPaymentSuccess("pi_1", "card", true, testNow)
		require.NoError(t, err)

		tr, err := r.RecordPaymentSuccess("pi_1", "card", true, testNow.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, tr.Changed)
		assert.Empty(t, tr.Intents)
	})

	t.Run("success after cancellation asks for a full refund", func(t *testing.T) {
		r := pending().WithStatus(reservation.StatusCancelled).Build()

		tr, err := r.RecordPaymentSuccess("pi_late", "card", true, testNow)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, r.Status())

		refunds := intentsOf[intent.RefundRequest](tr)
		require.Len(t, refunds, 1)
		assert.True(t, refunds[0].Amount.Equal(dec("115")))
		assert.Equal(t, "pi_late", refunds[0].PaymentReference)
	})

	t.Run("failure keeps the booking open and replays are no-ops", func(t *testing.T) {
		r := pending().Build()

		tr, err := r.RecordPaymentFailure("card_declined", testNow)
		require.NoError(t, err)
		assert.True(t, tr.Changed)
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.Equal(t, reservation.PaymentFailed, r.Payment().Status)

		tr, err = r.RecordPaymentFailure("card_declined", testNow)
		require.NoError(t, err)
		assert.False(t, tr.Changed)

		// A retry can still succeed.
		_, err = r.RecordPaymentSuccess("pi_2", "card", true, testNow)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
	})

	t.Run("failure after success is rejected", func(t *testing.T) {
		r := pending().WithPayment(reservation.PaymentSucceeded).Build()
		_, err := r.RecordPaymentFailure("late", testNow)
		assert.ErrorIs(t, err, reservation.ErrPaymentAlreadySucceeded)
	})

	t.Run("gateway cancellation cancels a pending booking", func(t *testing.T) {
		r := pending().Build()
		tr, err := r.AbortPayment(testNow)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, r.Status())
		assert.Equal(t, reservation.PartySystem, r.Cancellation().InitiatedBy)
		assert.True(t, tr.Changed)

		tr, err = r.AbortPayment(testNow)
		require.NoError(t, err)
		assert.False(t, tr.Changed)
	})
}

func TestReservationRequestPayment(t *testing.T) {
	b := pending()
	r := b.Build()

	charge, err := r.RequestPayment(b.ConsumerID)
	require.NoError(t, err)
	assert.Equal(t, int64(11500), charge.AmountCents)

	_, err = r.RequestPayment(b.OwnerID)
	assert.ErrorIs(t, err, reservation.ErrNotConsumer)

	paid := pending().WithPayment(reservation.PaymentSucceeded)
	_, err = paid.Build().RequestPayment(paid.ConsumerID)
	assert.ErrorIs(t, err, reservation.ErrPaymentAlreadySucceeded)
}

func TestReservationCancel(t *testing.T) {
	policy := reservation.DefaultPolicy()

	t.Run("consumer cancels a paid booking 50 hours ahead", func(t *testing.T) {
		b := pending().AsConfirmed()
		r := b.Build()

		tr, err := r.Cancel(b.ConsumerID, "change of plans", policy, testStart.Add(-50*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, r.Status())

		c := r.Cancellation()
		require.NotNil(t, c)
		assert.Equal(t, reservation.PartyConsumer, c.InitiatedBy)
		assert.Equal(t, "115.00", c.RefundAmount.String())

		notes := intentsOf[intent.Notification](tr)
		require.Len(t, notes, 1)
		assert.Equal(t, b.OwnerID, notes[0].RecipientID)

		refunds := intentsOf[intent.RefundRequest](tr)
		require.Len(t, refunds, 1)
		assert.True(t, refunds[0].Amount.Equal(dec("115")))
		assert.Equal(t, string(reservation.PartyConsumer), refunds[0].InitiatorRole)
	})

	t.Run("refund does not depend on who cancels", func(t *testing.T) {
		for _, until := range []time.Duration{50 * time.Hour, 30 * time.Hour, 10 * time.Hour} {
			byConsumer := pending().AsConfirmed()
			byOwner := pending().AsConfirmed()
			rc, ro := byConsumer.Build(), byOwner.Build()

			_, err := rc.Cancel(byConsumer.ConsumerID, "", policy, testStart.Add(-until))
			require.NoError(t, err)
			_, err = ro.Cancel(byOwner.OwnerID, "", policy, testStart.Add(-until))
			require.NoError(t, err)

			assert.True(t, rc.Cancellation().RefundAmount.Equal(ro.Cancellation().RefundAmount), "at %s", until)
			assert.Equal(t, reservation.PartyOwner, ro.Cancellation().InitiatedBy)
		}
	})

	t.Run("unpaid booking gets no refund request", func(t *testing.T) {
		b := pending()
		r := b.Build()
		tr, err := r.Cancel(b.ConsumerID, "", policy, testStart.Add(-50*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, intentsOf[intent.RefundRequest](tr))
	})

	t.Run("late cancellation gets no refund request", func(t *testing.T) {
		b := pending().AsConfirmed()
		r := b.Build()
		tr, err := r.Cancel(b.ConsumerID, "", policy, testStart.Add(-10*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, intentsOf[intent.RefundRequest](tr))
		assert.True(t, r.Cancellation().RefundAmount.IsZero())
	})

	t.Run("second cancel fails", func(t *testing.T) {
		b := pending()
		r := b.Build()
		_, err := r.Cancel(b.ConsumerID, "", policy, testNow)
		require.NoError(t, err)
		_, err = r.Cancel(b.ConsumerID, "", policy, testNow)
		assert.ErrorIs(t, err, reservation.ErrNotCancellable)
	})

	t.Run("outsider cannot cancel", func(t *testing.T) {
		r := pending().Build()
		_, err := r.Cancel(uuid.New(), "", policy, testNow)
		assert.ErrorIs(t, err, reservation.ErrNotParty)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		b := pending().AsCompleted(testNow)
		_, err := b.Build().Cancel(b.ConsumerID, "", policy, testNow)
		assert.ErrorIs(t, err, reservation.ErrNotCancellable)
	})
}

func TestReservationExpireUnpaid(t *testing.T) {
	timeout := 30 * time.Minute

	t.Run("not due yet", func(t *testing.T) {
		_, err := pending().Build().ExpireUnpaid(timeout, testNow.Add(29*time.Minute))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue)
	})

	t.Run("expires after the timeout", func(t *testing.T) {
		r := pending().WithPayment(reservation.PaymentFailed).Build()
		tr, err := r.ExpireUnpaid(timeout, testNow.Add(timeout))
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, r.Status())
		assert.Equal(t, reservation.ReasonUnpaidExpired, r.Cancellation().Reason)
		assert.Empty(t, intentsOf[intent.RefundRequest](tr))
	})

	t.Run("paid bookings never expire", func(t *testing.T) {
		r := pending().WithPayment(reservation.PaymentSucceeded).Build()
		_, err := r.ExpireUnpaid(timeout, testNow.Add(time.Hour))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue)
	})
}

func TestReservationLifecycle(t *testing.T) {
	window := 30 * 24 * time.Hour
	r := pending().AsConfirmed().Build()

	_, err := r.Start(testStart.Add(-time.Minute))
	assert.ErrorIs(t, err, reservation.ErrTransitionNotDue)

	tr, err := r.Start(testStart)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, tr.From)
	assert.Equal(t, reservation.StatusInProgress, r.Status())

	_, err = r.Start(testStart.Add(time.Minute))
	assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "starting twice")

	_, err = r.Complete(window, testStart.Add(time.Hour))
	assert.ErrorIs(t, err, reservation.ErrTransitionNotDue)

	end := testStart.Add(2 * time.Hour)
	tr, err = r.Complete(window, end)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCompleted, r.Status())
	assert.Len(t, intentsOf[intent.Notification](tr), 2)
	require.NotNil(t, r.ReviewDeadline())
	assert.True(t, r.ReviewDeadline().Equal(end.Add(window)))
	assert.True(t, r.ReviewDeadlineAt(window).Equal(end.Add(window)))

	_, err = r.Complete(window, end.Add(time.Hour))
	assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "completing twice")
}

func TestReservationSendReminder(t *testing.T) {
	lead := 24 * time.Hour

	cases := []struct {
		name  string
		build *builder.ReservationBuilder
		now   time.Time
		due   bool
	}{
		{name: "just outside the lead", build: pending().AsConfirmed(), now: testStart.Add(-lead - time.Second)},
		{name: "exactly at the lead", build: pending().AsConfirmed(), now: testStart.Add(-lead), due: true},
		{name: "one minute before start", build: pending().AsConfirmed(), now: testStart.Add(-time.Minute), due: true},
		{name: "slot already begun", build: pending().AsConfirmed(), now: testStart},
		{name: "unpaid booking", build: pending(), now: testStart.Add(-time.Hour)},
		{name: "already reminded", build: pending().AsConfirmed().WithReminderSent(testNow), now: testStart.Add(-time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.build.Build()
			tr, err := r.SendReminder(lead, tc.now)
			if !tc.due {
				assert.ErrorIs(t, err, reservation.ErrTransitionNotDue)
				return
			}
			require.NoError(t, err)
			assert.True(t, tr.Changed)
			assert.Equal(t, reservation.StatusConfirmed, tr.To, "status is untouched")

			notes := intentsOf[intent.Notification](tr)
			require.Len(t, notes, 2)
			assert.Equal(t, intent.BookingReminder, notes[0].Type)
			assert.ElementsMatch(t, []uuid.UUID{r.ConsumerID(), r.OwnerID()}, []uuid.UUID{notes[0].RecipientID, notes[1].RecipientID})

			require.NotNil(t, r.ReminderSentAt())
			_, err = r.SendReminder(lead, tc.now.Add(time.Second))
			assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "reminders fire once")
		})
	}
}

func TestReservationRemindReview(t *testing.T) {
	delay, window := 7*24*time.Hour, 30*24*time.Hour
	completed := testStart.Add(2 * time.Hour)
	done := func() *reservation.Reservation {
		return pending().AsCompleted(completed).Build()
	}

	t.Run("due window", func(t *testing.T) {
		_, err := done().RemindReview(delay, window, nil, completed.Add(delay-time.Second))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "too early")

		_, err = done().RemindReview(delay, window, nil, completed.Add(window+time.Second))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "review window closed")

		_, err = pending().AsConfirmed().Build().RemindReview(delay, window, nil, completed.Add(delay))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "not completed")
	})

	t.Run("nudges both parties", func(t *testing.T) {
		r := done()
		tr, err := r.RemindReview(delay, window, nil, completed.Add(delay))
		require.NoError(t, err)
		notes := intentsOf[intent.Notification](tr)
		require.Len(t, notes, 2)
		assert.Equal(t, intent.ReviewReminder, notes[1].Type)

		_, err = r.RemindReview(delay, window, nil, completed.Add(delay+time.Hour))
		assert.ErrorIs(t, err, reservation.ErrTransitionNotDue, "reminders fire once")
	})

	t.Run("skips parties who already reviewed", func(t *testing.T) {
		r := done()
		tr, err := r.RemindReview(delay, window, []uuid.UUID{r.ConsumerID()}, completed.Add(delay))
		require.NoError(t, err)
		notes := intentsOf[intent.Notification](tr)
		require.Len(t, notes, 1)
		assert.Equal(t, r.OwnerID(), notes[0].RecipientID)
	})

	t.Run("recorded even when both reviewed", func(t *testing.T) {
		r := done()
		tr, err := r.RemindReview(delay, window, []uuid.UUID{r.ConsumerID(), r.OwnerID()}, completed.Add(delay))
		require.NoError(t, err)
		assert.True(t, tr.Changed)
		assert.Empty(t, tr.Intents)
		assert.NotNil(t, r.State().ReviewReminderSentAt)
	})
}

func TestReservationCompleteSkipsStart(t *testing.T) {
	r := pending().AsConfirmed().Build()
	_, err := r.Complete(time.Hour, testStart.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCompleted, r.Status())
	assert.Nil(t, r.StartedAt())
}

func TestReservationRecordRefund(t *testing.T) {
	t.Run("active booking has nothing to refund", func(t *testing.T) {
		r := pending().AsConfirmed().Build()
		_, err := r.RecordRefund(reservation.MoneyFromCents(11500), true, testNow)
		assert.ErrorIs(t, err, reservation.ErrNotRefundable)
	})

	t.Run("partial then full refund", func(t *testing.T) {
		r := pending().WithStatus(reservation.StatusCancelled).WithPayment(reservation.PaymentSucceeded).Build()

		tr, err := r.RecordRefund(reservation.MoneyFromCents(2875), false, testNow)
		require.NoError(t, err)
		assert.True(t, tr.Changed)
		assert.Equal(t, reservation.PaymentSucceeded, r.Payment().Status)
		assert.Equal(t, "28.75", r.Payment().RefundedAmount.String())

		_, err = r.RecordRefund(reservation.MoneyFromCents(11500), true, testNow)
		require.NoError(t, err)
		assert.Equal(t, reservation.PaymentRefunded, r.Payment().Status)

		tr, err = r.RecordRefund(reservation.MoneyFromCents(11500), true, testNow)
		require.NoError(t, err)
		assert.False(t, tr.Changed)
	})
}

func TestReservationStateRoundTrip(t *testing.T) {
	b := pending().AsConfirmed()
	state := b.State()
	assert.Equal(t, state, reservation.Reconstruct(state).State())
}
