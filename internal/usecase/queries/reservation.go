package queries

import (
	"context"

	"facility-booking/internal/domain/actor"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ListReservationsInput struct {
	// Role narrows the actor's reservations to those booked (consumer) or hosted (owner).
	Role   shared.ParticipantRole
	Status *reservation.Status
	After  string
	Limit  int
}

type ReservationPage struct {
	Items      []*reservation.Reservation
	NextCursor string
}

//go:generate mockgen -destination=../../../tests/mock/queries/queries.go -package=queriesmock facility-booking/internal/usecase/queries ReservationQueries,ReviewQueries

type ReservationQueries interface {
	GetReservation(ctx context.Context, a actor.Actor, id uuid.UUID) (*reservation.Reservation, error)
	ListReservations(ctx context.Context, a actor.Actor, in ListReservationsInput) (*ReservationPage, error)
}

type reservationQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewReservationQueries(uow shared.UnitOfWork) ReservationQueries {
	return &reservationQueriesImpl{uow: uow}
}

func (q *reservationQueriesImpl) GetReservation(ctx context.Context, a actor.Actor, id uuid.UUID) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Reservations().FindByID(ctx, id)
		return infra.Translate(err, reservation.ErrReservationNotFound)
	})
	if err != nil {
		return nil, err
	}
	if !res.IsParty(a.ID) && !a.IsAdmin() {
		return nil, errs.ErrForbidden
	}
	return res, nil
}

func (q *reservationQueriesImpl) ListReservations(ctx context.Context, a actor.Actor, in ListReservationsInput) (*ReservationPage, error) {
	after, err := DecodeAfterCursor(in.After)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, ErrInvalidStatusFilter
	}

	limit := ValidateLimit(in.Limit)
	filter := shared.ReservationFilter{
		Role:   participantRole(a, in.Role),
		Status: in.Status,
		After:  after,
		Limit:  limit + 1,
	}
	if !a.IsAdmin() {
		id := a.ID
		filter.ParticipantID = &id
	}

	var rows []*reservation.Reservation
	err = q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rows, err = tx.Reservations().List(ctx, filter)
		return infra.Translate(err, nil)
	})
	if err != nil {
		return nil, err
	}

	page := &ReservationPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = EncodeAfterCursor(last.TimeSlot().Start(), last.ID())
	}
	return page, nil
}

func participantRole(a actor.Actor, requested shared.ParticipantRole) shared.ParticipantRole {
	switch requested {
	case shared.AsConsumer, shared.AsOwner, shared.AsAny:
		return requested
	}
	switch a.Role {
	case actor.RoleCoach:
		return shared.AsConsumer
	case actor.RoleOwner:
		return shared.AsOwner
	default:
		return shared.AsAny
	}
}
