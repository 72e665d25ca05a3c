package reservation

import "facility-booking/internal/pkg/errs"

var (
	// Validation
	ErrStartTooSoon          = errs.NewKind(errs.KindValidation, "start time is below the minimum advance window")
	ErrStartTooFar           = errs.NewKind(errs.KindValidation, "start time is beyond the maximum advance window")
	ErrEndNotAfterStart      = errs.NewKind(errs.KindValidation, "end time must be after start time")
	ErrDurationOutOfBounds   = errs.NewKind(errs.KindValidation, "duration is outside the allowed bounds")
	ErrPriceOutOfBounds      = errs.NewKind(errs.KindValidation, "total price is outside the allowed bounds")
	ErrInvalidHourlyRate     = errs.NewKind(errs.KindValidation, "hourly rate must not be negative")
	ErrInvalidCommissionRate = errs.NewKind(errs.KindValidation, "commission rate must be between 0 and 1")
	ErrInvalidDuration       = errs.NewKind(errs.KindValidation, "duration must be positive")
	ErrInvalidPolicy         = errs.NewKind(errs.KindValidation, "invalid booking policy")

	// Not found
	ErrReservationNotFound = errs.NewKind(errs.KindNotFound, "reservation not found")

	// Permission
	ErrNotOwner    = errs.NewKind(errs.KindPermission, "only the facility owner may perform this action")
	ErrNotConsumer = errs.NewKind(errs.KindPermission, "only the booking consumer may perform this action")
	ErrNotParty    = errs.NewKind(errs.KindPermission, "actor is not a party to this reservation")

	// Conflict
	ErrSlotConflict      = errs.NewKind(errs.KindConflict, "time slot overlaps an active reservation")
	ErrTooManyPending    = errs.NewKind(errs.KindConflict, "too many reservations awaiting payment")
	ErrDailyLimitReached = errs.NewKind(errs.KindConflict, "daily reservation limit reached")

	// Precondition
	ErrFacilityInactive        = errs.NewKind(errs.KindPrecondition, "facility is not available for booking")
	ErrNotPending              = errs.NewKind(errs.KindPrecondition, "reservation is not pending")
	ErrPaymentNotSucceeded     = errs.NewKind(errs.KindPrecondition, "payment has not succeeded")
	ErrPaymentAlreadySucceeded = errs.NewKind(errs.KindPrecondition, "payment has already succeeded")
	ErrNotCancellable          = errs.NewKind(errs.KindPrecondition, "reservation cannot be cancelled in its current state")
	ErrNotRefundable           = errs.NewKind(errs.KindPrecondition, "reservation has no captured payment to refund")
	ErrTransitionNotDue        = errs.NewKind(errs.KindPrecondition, "transition does not apply at this time")
)
