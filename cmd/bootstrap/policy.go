package bootstrap

import (
	"fmt"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/pkg/config"

	"github.com/shopspring/decimal"
)

// NewPolicy turns the booking configuration into a validated reservation policy.
func NewPolicy(cfg config.Config) (reservation.Policy, error) {
	b := cfg.Booking

	commission, err := decimal.NewFromString(b.CommissionRate)
	if err != nil {
		return reservation.Policy{}, fmt.Errorf("invalid BOOKING_COMMISSION_RATE: %w", err)
	}
	minPrice, err := decimal.NewFromString(b.MinPrice)
	if err != nil {
		return reservation.Policy{}, fmt.Errorf("invalid BOOKING_MIN_PRICE: %w", err)
	}
	maxPrice, err := decimal.NewFromString(b.MaxPrice)
	if err != nil {
		return reservation.Policy{}, fmt.Errorf("invalid BOOKING_MAX_PRICE: %w", err)
	}
	partialRate, err := decimal.NewFromString(b.PartialRefundRate)
	if err != nil {
		return reservation.Policy{}, fmt.Errorf("invalid BOOKING_PARTIAL_REFUND_RATE: %w", err)
	}
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return reservation.Policy{}, fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	policy := reservation.Policy{
		CommissionRate:       commission,
		Currency:             b.Currency,
		MinAdvance:           b.MinAdvance,
		MaxAdvance:           time.Duration(b.MaxAdvanceDays) * 24 * time.Hour,
		MinDuration:          b.MinDuration,
		MaxDuration:          b.MaxDuration,
		MaxPerDay:            b.MaxPerDay,
		MaxPending:           b.MaxPending,
		MinPrice:             minPrice,
		MaxPrice:             maxPrice,
		FullRefundWindow:     b.FullRefundWindow,
		PartialRefundWindow:  b.PartialRefundWindow,
		PartialRefundRate:    partialRate,
		UnpaidTimeout:        b.UnpaidTimeout,
		ReviewWindow:         b.ReviewWindow,
		ReminderLead:         b.ReminderLead,
		ReviewReminderDelay:  b.ReviewReminderDelay,
		Location:             loc,
		AutoConfirmOnPayment: b.AutoConfirmOnPayment,
	}
	if err := policy.Validate(); err != nil {
		return reservation.Policy{}, err
	}
	return policy, nil
}
