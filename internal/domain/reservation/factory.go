package reservation

import (
	"time"

	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/intent"
	"facility-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock           clock.Clock
	Policy          Policy
	PriceCalculator PriceCalculator
}

func NewFactory(clock clock.Clock, policy Policy, priceCalculator PriceCalculator) *Factory {
	return &Factory{
		Clock:           clock,
		Policy:          policy,
		PriceCalculator: priceCalculator,
	}
}

// CreateParams is everything the creation guards read. Usage and Occupied must come from the same
// transaction that inserts the reservation.
type CreateParams struct {
	Facility   *facility.Facility
	Space      *facility.Space
	ConsumerID uuid.UUID
	Slot       TimeSlot
	Usage      QuotaUsage
	Occupied   []Occupancy
}

// CreateReservation runs the guards after the slot checks, in order: facility active, pending quota,
// daily quota, conflict, price bounds.
func (f *Factory) CreateReservation(p CreateParams) (*Reservation, Transition, error) {
	if !p.Facility.IsActive() {
		return nil, Transition{}, ErrFacilityInactive
	}
	if p.Space != nil && !p.Space.BelongsTo(p.Facility.ID()) {
		return nil, Transition{}, facility.ErrSpaceNotFound
	}
	if err := f.Policy.CheckQuota(p.Usage); err != nil {
		return nil, Transition{}, err
	}
	if err := DetectConflict(p.Slot, p.Occupied); err != nil {
		return nil, Transition{}, err
	}

	pricing, err := f.PriceCalculator.Calculate(p.Facility.HourlyRate(), p.Slot)
	if err != nil {
		return nil, Transition{}, err
	}

	now := f.Clock.Now()
	var spaceID *uuid.UUID
	if p.Space != nil {
		id := p.Space.ID()
		spaceID = &id
	}

	r := &Reservation{
		id:         uuid.New(),
		consumerID: p.ConsumerID,
		ownerID:    p.Facility.OwnerID(),
		facilityID: p.Facility.ID(),
		spaceID:    spaceID,
		slot:       p.Slot,
		pricing:    pricing,
		currency:   f.Policy.Currency,
		status:     StatusPending,
		payment:    Payment{Status: PaymentPending, RefundedAmount: ZeroMoney()},
		createdAt:  now,
		updatedAt:  now,
		version:    1,
	}

	return r, Transition{
		To:      StatusPending,
		Changed: true,
		Intents: []intent.Intent{
			r.notifyOwner(intent.BookingCreated, "total", pricing.Total.String()),
			r.ChargeRequest(),
		},
	}, nil
}

// CheckSlot validates the requested interval against the clock.
func (f *Factory) CheckSlot(start, end time.Time) (TimeSlot, error) {
	return f.Policy.CheckSlot(f.Clock.Now(), start, end)
}
