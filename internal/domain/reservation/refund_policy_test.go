//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"facility-booking/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
)

func TestRefundFor(t *testing.T) {
	policy := reservation.DefaultPolicy()
	start := time.Date(2030, 6, 10, 18, 0, 0, 0, time.UTC)
	total := reservation.NewMoney(dec("115"))

	cases := []struct {
		name       string
		untilStart time.Duration
		rate       string
		amount     string
	}{
		{name: "50 hours before start", untilStart: 50 * time.Hour, rate: "1", amount: "115.00"},
		{name: "just over 48 hours", untilStart: 48*time.Hour + time.Second, rate: "1", amount: "115.00"},
		{name: "exactly 48 hours", untilStart: 48 * time.Hour, rate: "0.25", amount: "28.75"},
		{name: "30 hours before start", untilStart: 30 * time.Hour, rate: "0.25", amount: "28.75"},
		{name: "just over 24 hours", untilStart: 24*time.Hour + time.Second, rate: "0.25", amount: "28.75"},
		{name: "exactly 24 hours", untilStart: 24 * time.Hour, rate: "0", amount: "0.00"},
		{name: "10 hours before start", untilStart: 10 * time.Hour, rate: "0", amount: "0.00"},
		{name: "after start", untilStart: -time.Hour, rate: "0", amount: "0.00"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			refund := policy.RefundFor(start, start.Add(-c.untilStart), total)
			assert.True(t, refund.Rate.Equal(dec(c.rate)), "rate %s", refund.Rate)
			assert.Equal(t, c.amount, refund.Amount.String())
		})
	}
}

func TestRefundRateIsNonIncreasing(t *testing.T) {
	policy := reservation.DefaultPolicy()
	prev := dec("1")
	for h := 96 * time.Hour; h >= -time.Hour; h -= 15 * time.Minute {
		rate := reservation.RefundRate(h, policy.FullRefundWindow, policy.PartialRefundWindow, policy.PartialRefundRate)
		assert.True(t, rate.LessThanOrEqual(prev), "rate went up at %s", h)
		prev = rate
	}
}
