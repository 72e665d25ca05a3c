package reservation

import (
	"time"

	"facility-booking/internal/pkg/errs"
)

// QuotaUsage is read inside the creation transaction, scoped to the consumer.
type QuotaUsage struct {
	Pending int
	SameDay int
}

// DayBounds returns the inclusive calendar-day window around start: 00:00:00.000 to 23:59:59.999.
func (p Policy) DayBounds(start time.Time) (time.Time, time.Time) {
	local := start.In(p.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
	return dayStart, dayEnd
}

// CheckQuota evaluates the pending backpressure limit before the daily limit.
func (p Policy) CheckQuota(usage QuotaUsage) error {
	if usage.Pending >= p.MaxPending {
		return errs.Wrapf(ErrTooManyPending, "%d pending reservations (max %d)", usage.Pending, p.MaxPending)
	}
	if usage.SameDay >= p.MaxPerDay {
		return errs.Wrapf(ErrDailyLimitReached, "%d reservations that day (max %d)", usage.SameDay, p.MaxPerDay)
	}
	return nil
}
