package reservation

import (
	"facility-booking/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type PriceBreakdown struct {
	HourlyRate     decimal.Decimal
	DurationHours  decimal.Decimal
	CommissionRate decimal.Decimal
	Subtotal       Money
	Commission     Money
	Total          Money
}

// Price computes the commercial fields of a booking with exact decimal arithmetic.
// Subtotal and commission are the persisted boundary values; total is their exact sum,
// so total == subtotal + commission and commission == round(subtotal * rate, 2) always hold.
func Price(hourlyRate, durationHours, commissionRate decimal.Decimal) (PriceBreakdown, error) {
	if hourlyRate.IsNegative() {
		return PriceBreakdown{}, ErrInvalidHourlyRate
	}
	if !durationHours.IsPositive() {
		return PriceBreakdown{}, ErrInvalidDuration
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return PriceBreakdown{}, ErrInvalidCommissionRate
	}

	subtotal := NewMoney(hourlyRate.Mul(durationHours))
	commission := NewMoney(subtotal.Amount().Mul(commissionRate))

	return PriceBreakdown{
		HourlyRate:     hourlyRate,
		DurationHours:  durationHours,
		CommissionRate: commissionRate,
		Subtotal:       subtotal,
		Commission:     commission,
		Total:          subtotal.Add(commission),
	}, nil
}

type PriceCalculator interface {
	Calculate(hourlyRate decimal.Decimal, slot TimeSlot) (PriceBreakdown, error)
}

// DefaultPriceCalculator applies the policy commission and price bounds.
type DefaultPriceCalculator struct {
	policy Policy
}

func NewDefaultPriceCalculator(policy Policy) *DefaultPriceCalculator {
	return &DefaultPriceCalculator{policy: policy}
}

func (pc *DefaultPriceCalculator) Calculate(hourlyRate decimal.Decimal, slot TimeSlot) (PriceBreakdown, error) {
	breakdown, err := Price(hourlyRate, slot.Hours(), pc.policy.CommissionRate)
	if err != nil {
		return PriceBreakdown{}, err
	}

	total := breakdown.Total.Amount()
	if total.LessThan(pc.policy.MinPrice) || total.GreaterThan(pc.policy.MaxPrice) {
		return PriceBreakdown{}, errs.Wrapf(ErrPriceOutOfBounds, "total %s not within [%s, %s]",
			breakdown.Total, pc.policy.MinPrice.StringFixed(2), pc.policy.MaxPrice.StringFixed(2))
	}
	return breakdown, nil
}
