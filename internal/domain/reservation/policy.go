package reservation

import (
	"time"

	"facility-booking/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Policy holds every tunable of the booking rules.
type Policy struct {
	CommissionRate decimal.Decimal
	Currency       string

	MinAdvance  time.Duration
	MaxAdvance  time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	MaxPerDay  int
	MaxPending int

	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal

	FullRefundWindow    time.Duration
	PartialRefundWindow time.Duration
	PartialRefundRate   decimal.Decimal

	UnpaidTimeout time.Duration
	ReviewWindow  time.Duration

	// ReminderLead is how long before its start a confirmed booking gets its reminder.
	ReminderLead time.Duration

	// ReviewReminderDelay is how long after completion parties without a review are nudged.
	ReviewReminderDelay time.Duration

	// Location defines calendar days for the same-day quota.
	Location *time.Location

	AutoConfirmOnPayment bool
}

func DefaultPolicy() Policy {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		loc = time.UTC
	}
	return Policy{
		CommissionRate:       decimal.RequireFromString("0.15"),
		Currency:             "EUR",
		MinAdvance:           24 * time.Hour,
		MaxAdvance:           90 * 24 * time.Hour,
		MinDuration:          time.Hour,
		MaxDuration:          8 * time.Hour,
		MaxPerDay:            5,
		MaxPending:           10,
		MinPrice:             decimal.NewFromInt(15),
		MaxPrice:             decimal.NewFromInt(5000),
		FullRefundWindow:     48 * time.Hour,
		PartialRefundWindow:  24 * time.Hour,
		PartialRefundRate:    decimal.RequireFromString("0.25"),
		UnpaidTimeout:        30 * time.Minute,
		ReviewWindow:         30 * 24 * time.Hour,
		ReminderLead:         24 * time.Hour,
		ReviewReminderDelay:  7 * 24 * time.Hour,
		Location:             loc,
		AutoConfirmOnPayment: true,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThan(decimal.NewFromInt(1)):
		return errs.Wrap(ErrInvalidPolicy, "commission rate")
	case p.MinAdvance < 0 || p.MaxAdvance < p.MinAdvance:
		return errs.Wrap(ErrInvalidPolicy, "advance window")
	case p.MinDuration <= 0 || p.MaxDuration < p.MinDuration:
		return errs.Wrap(ErrInvalidPolicy, "duration bounds")
	case p.MaxPerDay <= 0 || p.MaxPending <= 0:
		return errs.Wrap(ErrInvalidPolicy, "quotas")
	case p.MinPrice.IsNegative() || p.MaxPrice.LessThan(p.MinPrice):
		return errs.Wrap(ErrInvalidPolicy, "price bounds")
	case p.PartialRefundWindow < 0 || p.FullRefundWindow < p.PartialRefundWindow:
		return errs.Wrap(ErrInvalidPolicy, "refund windows")
	case p.PartialRefundRate.IsNegative() || p.PartialRefundRate.GreaterThan(decimal.NewFromInt(1)):
		return errs.Wrap(ErrInvalidPolicy, "partial refund rate")
	case p.UnpaidTimeout <= 0 || p.ReviewWindow <= 0:
		return errs.Wrap(ErrInvalidPolicy, "timeouts")
	case p.ReminderLead <= 0 || p.ReviewReminderDelay <= 0 || p.ReviewReminderDelay >= p.ReviewWindow:
		return errs.Wrap(ErrInvalidPolicy, "reminders")
	case p.Location == nil:
		return errs.Wrap(ErrInvalidPolicy, "location")
	}
	return nil
}

// CheckSlot runs the advance window and duration guards, in that order.
func (p Policy) CheckSlot(now, start, end time.Time) (TimeSlot, error) {
	if start.Before(now.Add(p.MinAdvance)) {
		return TimeSlot{}, ErrStartTooSoon
	}
	if start.After(now.Add(p.MaxAdvance)) {
		return TimeSlot{}, ErrStartTooFar
	}

	slot, err := NewTimeSlot(start, end)
	if err != nil {
		return TimeSlot{}, err
	}

	if d := slot.Duration(); d < p.MinDuration || d > p.MaxDuration {
		return TimeSlot{}, errs.Wrapf(ErrDurationOutOfBounds, "duration %s not within [%s, %s]", d, p.MinDuration, p.MaxDuration)
	}
	return slot, nil
}
