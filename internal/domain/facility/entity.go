package facility

import (
	"strings"
	"time"

	"facility-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrFacilityNotFound    = errs.NewKind(errs.KindNotFound, "facility not found")
	ErrSpaceNotFound       = errs.NewKind(errs.KindNotFound, "space not found")
	ErrEmptyFacilityName   = errs.NewKind(errs.KindValidation, "facility name cannot be empty")
	ErrFacilityNameTooLong = errs.NewKind(errs.KindValidation, "facility name is too long (max 255 characters)")
	ErrNegativeHourlyRate  = errs.NewKind(errs.KindValidation, "hourly rate cannot be negative")
)

const (
	MaxFacilityNameLength = 255
)

type Facility struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	name          string
	hourlyRate    decimal.Decimal
	active        bool
	totalBookings int
	createdAt     time.Time
	updatedAt     time.Time
}

func NewFacility(id, ownerID uuid.UUID, name string, hourlyRate decimal.Decimal, now time.Time) (*Facility, error) {
	if err := validateFacilityName(name); err != nil {
		return nil, err
	}
	if hourlyRate.IsNegative() {
		return nil, ErrNegativeHourlyRate
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Facility{
		id:         id,
		ownerID:    ownerID,
		name:       strings.TrimSpace(name),
		hourlyRate: hourlyRate,
		active:     true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructFacility(
	id, ownerID uuid.UUID,
	name string,
	hourlyRate decimal.Decimal,
	active bool,
	totalBookings int,
	createdAt, updatedAt time.Time,
) *Facility {
	return &Facility{
		id:            id,
		ownerID:       ownerID,
		name:          name,
		hourlyRate:    hourlyRate,
		active:        active,
		totalBookings: totalBookings,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (f *Facility) Deactivate(now time.Time) {
	f.active = false
	f.updatedAt = now
}

func validateFacilityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFacilityName
	}
	if len(name) > MaxFacilityNameLength {
		return ErrFacilityNameTooLong
	}
	return nil
}

func (f *Facility) ID() uuid.UUID               { return f.id }
func (f *Facility) OwnerID() uuid.UUID          { return f.ownerID }
func (f *Facility) Name() string                { return f.name }
func (f *Facility) HourlyRate() decimal.Decimal { return f.hourlyRate }
func (f *Facility) IsActive() bool              { return f.active }
func (f *Facility) TotalBookings() int          { return f.totalBookings }
func (f *Facility) CreatedAt() time.Time        { return f.createdAt }
func (f *Facility) UpdatedAt() time.Time        { return f.updatedAt }

// Space is a bookable sub-area of a facility (a court, a room).
type Space struct {
	id         uuid.UUID
	facilityID uuid.UUID
	name       string
}

func ReconstructSpace(id, facilityID uuid.UUID, name string) *Space {
	return &Space{id: id, facilityID: facilityID, name: name}
}

func (s *Space) ID() uuid.UUID         { return s.id }
func (s *Space) FacilityID() uuid.UUID { return s.facilityID }
func (s *Space) Name() string          { return s.name }

func (s *Space) BelongsTo(facilityID uuid.UUID) bool {
	return s.facilityID == facilityID
}
