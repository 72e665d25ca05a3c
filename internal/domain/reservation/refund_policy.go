package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Refund struct {
	Rate   decimal.Decimal
	Amount Money
}

// RefundRate is a non-increasing step function of the time left before the start.
// Both thresholds are exclusive: exactly fullWindow before start yields the partial rate.
func RefundRate(untilStart, fullWindow, partialWindow time.Duration, partialRate decimal.Decimal) decimal.Decimal {
	switch {
	case untilStart > fullWindow:
		return decimal.NewFromInt(1)
	case untilStart > partialWindow:
		return partialRate
	default:
		return decimal.Zero
	}
}

// RefundFor applies the cancellation policy. It does not depend on who cancels.
func (p Policy) RefundFor(start, cancelledAt time.Time, total Money) Refund {
	rate := RefundRate(start.Sub(cancelledAt), p.FullRefundWindow, p.PartialRefundWindow, p.PartialRefundRate)
	return Refund{
		Rate:   rate,
		Amount: NewMoney(total.Amount().Mul(rate)),
	}
}
