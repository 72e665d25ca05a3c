package request

import (
	"strings"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/queries"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	FacilityID uuid.UUID  `json:"facilityId" binding:"required"`
	SpaceID    *uuid.UUID `json:"spaceId,omitempty"`
	StartTime  time.Time  `json:"startTime" binding:"required"`
	EndTime    time.Time  `json:"endTime" binding:"required"`
}

func (r CreateReservationRequest) ToInput(idempotencyKey string) commands.CreateReservationInput {
	return commands.CreateReservationInput{
		FacilityID:     r.FacilityID,
		SpaceID:        r.SpaceID,
		Start:          r.StartTime,
		End:            r.EndTime,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ListReservationsRequest struct {
	Role   string `form:"role" binding:"omitempty,oneof=consumer owner any"`
	Status string `form:"status"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (r ListReservationsRequest) ToInput() queries.ListReservationsInput {
	in := queries.ListReservationsInput{
		Role:  shared.ParticipantRole(r.Role),
		After: r.Cursor,
		Limit: r.Limit,
	}
	if r.Status != "" {
		s := reservation.Status(r.Status)
		in.Status = &s
	}
	return in
}
