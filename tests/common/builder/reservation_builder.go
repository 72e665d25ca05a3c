//go:build unit || e2e

package builder

import (
	"time"

	"facility-booking/internal/domain/reservation"
	reqdto "facility-booking/internal/handler/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationBuilder struct {
	ID            uuid.UUID
	ConsumerID    uuid.UUID
	OwnerID       uuid.UUID
	FacilityID    uuid.UUID
	SpaceID       *uuid.UUID
	Start         time.Time
	End           time.Time
	HourlyRate    decimal.Decimal
	Status        reservation.Status
	PaymentStatus reservation.PaymentStatus
	Reference     string
	CompletedAt   *time.Time
	ReminderSent  *time.Time
	CreatedAt     time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)
	return &ReservationBuilder{
		ID:            uuid.New(),
		ConsumerID:    uuid.New(),
		OwnerID:       uuid.New(),
		FacilityID:    uuid.New(),
		Start:         start,
		End:           start.Add(2 * time.Hour),
		HourlyRate:    decimal.NewFromInt(40),
		Status:        reservation.StatusPending,
		PaymentStatus: reservation.PaymentPending,
		CreatedAt:     time.Now(),
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *ReservationBuilder) State() reservation.State {
	slot, err := reservation.NewTimeSlot(b.Start, b.End)
	if err != nil {
		panic(err)
	}
	pricing, err := reservation.Price(b.HourlyRate, slot.Hours(), decimal.RequireFromString("0.15"))
	if err != nil {
		panic(err)
	}
	s := reservation.State{
		ID:         b.ID,
		ConsumerID: b.ConsumerID,
		OwnerID:    b.OwnerID,
		FacilityID: b.FacilityID,
		SpaceID:    b.SpaceID,
		Start:      b.Start,
		End:        b.End,
		Pricing:    pricing,
		Currency:   "EUR",
		Status:     b.Status,
		Payment: reservation.Payment{
			Status:         b.PaymentStatus,
			Reference:      b.Reference,
			RefundedAmount: reservation.ZeroMoney(),
		},
		CompletedAt:    b.CompletedAt,
		ReminderSentAt: b.ReminderSent,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.CreatedAt,
		Version:        1,
	}
	if b.Status == reservation.StatusConfirmed || b.Status == reservation.StatusInProgress || b.Status == reservation.StatusCompleted {
		confirmed := b.CreatedAt
		s.ConfirmedAt = &confirmed
	}
	return s
}

func (b *ReservationBuilder) Build() *reservation.Reservation {
	return reservation.Reconstruct(b.State())
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		FacilityID: b.FacilityID,
		SpaceID:    b.SpaceID,
		StartTime:  b.Start,
		EndTime:    b.End,
	}
}

// Fluent builder methods
func (b *ReservationBuilder) WithID(id uuid.UUID) *ReservationBuilder {
	b.ID = id
	return b
}

func (b *ReservationBuilder) WithConsumerID(id uuid.UUID) *ReservationBuilder {
	b.ConsumerID = id
	return b
}

func (b *ReservationBuilder) WithOwnerID(id uuid.UUID) *ReservationBuilder {
	b.OwnerID = id
	return b
}

func (b *ReservationBuilder) WithFacilityID(id uuid.UUID) *ReservationBuilder {
	b.FacilityID = id
	return b
}

func (b *ReservationBuilder) WithSlot(start, end time.Time) *ReservationBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *ReservationBuilder) WithHourlyRate(rate string) *ReservationBuilder {
	b.HourlyRate = decimal.RequireFromString(rate)
	return b
}

func (b *ReservationBuilder) WithStatus(s reservation.Status) *ReservationBuilder {
	b.Status = s
	return b
}

func (b *ReservationBuilder) WithPayment(p reservation.PaymentStatus) *ReservationBuilder {
	b.PaymentStatus = p
	if p == reservation.PaymentSucceeded && b.Reference == "" {
		b.Reference = "pi_test_" + b.ID.String()[:8]
	}
	return b
}

func (b *ReservationBuilder) WithCreatedAt(t time.Time) *ReservationBuilder {
	b.CreatedAt = t
	return b
}

func (b *ReservationBuilder) AsConfirmed() *ReservationBuilder {
	return b.WithStatus(reservation.StatusConfirmed).WithPayment(reservation.PaymentSucceeded)
}

func (b *ReservationBuilder) AsCompleted(at time.Time) *ReservationBuilder {
	b.WithStatus(reservation.StatusCompleted).WithPayment(reservation.PaymentSucceeded)
	b.CompletedAt = &at
	return b
}

func (b *ReservationBuilder) WithReminderSent(at time.Time) *ReservationBuilder {
	b.ReminderSent = &at
	return b
}
