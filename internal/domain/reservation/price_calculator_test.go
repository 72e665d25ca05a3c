//go:build unit

package reservation_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"facility-booking/internal/domain/reservation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrice(t *testing.T) {
	t.Run("50 per hour for 2 hours at 15 percent", func(t *testing.T) {
		p, err := reservation.Price(dec("50"), dec("2"), dec("0.15"))
		require.NoError(t, err)

		assert.Equal(t, "100.00", p.Subtotal.String())
		assert.Equal(t, "15.00", p.Commission.String())
		assert.Equal(t, "115.00", p.Total.String())
	})

	t.Run("fractional durations round only at the boundary", func(t *testing.T) {
		// 33.33 * 1.5 = 49.995 -> 50.00; 50.00 * 0.15 = 7.50
		p, err := reservation.Price(dec("33.33"), dec("1.5"), dec("0.15"))
		require.NoError(t, err)

		assert.Equal(t, "50.00", p.Subtotal.String())
		assert.Equal(t, "7.50", p.Commission.String())
		assert.Equal(t, "57.50", p.Total.String())
	})

	t.Run("invalid inputs", func(t *testing.T) {
		cases := []struct {
			name     string
			rate     string
			hours    string
			commRate string
			errIs    error
		}{
			{name: "negative hourly rate", rate: "-1", hours: "1", commRate: "0.15", errIs: reservation.ErrInvalidHourlyRate},
			{name: "zero duration", rate: "10", hours: "0", commRate: "0.15", errIs: reservation.ErrInvalidDuration},
			{name: "negative commission", rate: "10", hours: "1", commRate: "-0.01", errIs: reservation.ErrInvalidCommissionRate},
			{name: "commission above one", rate: "10", hours: "1", commRate: "1.01", errIs: reservation.ErrInvalidCommissionRate},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				_, err := reservation.Price(dec(c.rate), dec(c.hours), dec(c.commRate))
				require.ErrorIs(t, err, c.errIs)
			})
		}
	})

	t.Run("total is always subtotal plus rounded commission", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 11))
		for i := 0; i < 2000; i++ {
			// rate 0.00..999.99, quarter hours up to 8h, commission 0..1
			rate := decimal.New(rng.Int64N(100000), -2)
			hours := decimal.NewFromInt(rng.Int64N(32) + 1).Div(dec("4"))
			commission := decimal.New(rng.Int64N(10001), -4)

			p, err := reservation.Price(rate, hours, commission)
			require.NoError(t, err)

			assert.True(t, p.Total.Amount().Equal(p.Subtotal.Amount().Add(p.Commission.Amount())),
				"total %s != %s + %s", p.Total, p.Subtotal, p.Commission)
			assert.True(t, p.Commission.Amount().Equal(p.Subtotal.Amount().Mul(commission).Round(2)),
				"commission %s for subtotal %s at %s", p.Commission, p.Subtotal, commission)
			assert.True(t, p.Total.Amount().Equal(p.Total.Amount().Round(2)))
		}
	})
}

func TestDefaultPriceCalculator(t *testing.T) {
	policy := reservation.DefaultPolicy()
	calc := reservation.NewDefaultPriceCalculator(policy)
	start := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	slot := func(d time.Duration) reservation.TimeSlot {
		s, err := reservation.NewTimeSlot(start, start.Add(d))
		require.NoError(t, err)
		return s
	}

	t.Run("within bounds", func(t *testing.T) {
		p, err := calc.Calculate(dec("50"), slot(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "115.00", p.Total.String())
		assert.True(t, p.DurationHours.Equal(dec("2")))
	})

	t.Run("below minimum price", func(t *testing.T) {
		// 10 * 1h * 1.15 = 11.50 < 15
		_, err := calc.Calculate(dec("10"), slot(time.Hour))
		require.ErrorIs(t, err, reservation.ErrPriceOutOfBounds)
	})

	t.Run("above maximum price", func(t *testing.T) {
		// 1000 * 8h * 1.15 = 9200 > 5000
		_, err := calc.Calculate(dec("1000"), slot(8*time.Hour))
		require.ErrorIs(t, err, reservation.ErrPriceOutOfBounds)
	})

	t.Run("exact lower bound is accepted", func(t *testing.T) {
		// 13.04 + round(1.956) = 15.00; 13.03 + round(1.9545) = 14.98
		p, err := calc.Calculate(dec("13.04"), slot(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "15.00", p.Total.String())

		_, err = calc.Calculate(dec("13.03"), slot(time.Hour))
		require.ErrorIs(t, err, reservation.ErrPriceOutOfBounds)
	})
}
