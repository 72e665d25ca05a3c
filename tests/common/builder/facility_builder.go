//go:build unit || e2e

package builder

import (
	"time"

	"facility-booking/internal/domain/facility"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FacilityBuilder struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	HourlyRate decimal.Decimal
	Active     bool
	CreatedAt  time.Time
}

func NewFacilityBuilder() *FacilityBuilder {
	return &FacilityBuilder{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		Name:       "Riverside Tennis Club",
		HourlyRate: decimal.NewFromInt(40),
		Active:     true,
		CreatedAt:  time.Now(),
	}
}

func (f *FacilityBuilder) Build() *facility.Facility {
	return facility.ReconstructFacility(f.ID, f.OwnerID, f.Name, f.HourlyRate, f.Active, 0, f.CreatedAt, f.CreatedAt)
}

func (f *FacilityBuilder) WithID(id uuid.UUID) *FacilityBuilder {
	f.ID = id
	return f
}

func (f *FacilityBuilder) WithOwnerID(id uuid.UUID) *FacilityBuilder {
	f.OwnerID = id
	return f
}

func (f *FacilityBuilder) WithHourlyRate(rate string) *FacilityBuilder {
	f.HourlyRate = decimal.RequireFromString(rate)
	return f
}

func (f *FacilityBuilder) Inactive() *FacilityBuilder {
	f.Active = false
	return f
}
