package reservation

import (
	"time"

	"facility-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

// Occupancy is the slice of a sibling reservation the conflict detector needs.
type Occupancy struct {
	ReservationID uuid.UUID
	Start         time.Time
	End           time.Time
	Status        Status
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Back-to-back intervals sharing an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return bEnd.After(aStart) && bStart.Before(aEnd)
}

// DetectConflict rejects slot when any active occupancy overlaps it.
func DetectConflict(slot TimeSlot, existing []Occupancy) error {
	for _, o := range existing {
		if !o.Status.IsActive() {
			continue
		}
		if Overlaps(slot.Start(), slot.End(), o.Start, o.End) {
			return errs.Wrapf(ErrSlotConflict, "overlaps reservation %s", o.ReservationID)
		}
	}
	return nil
}
