package queries

import "facility-booking/internal/pkg/errs"

var (
	ErrInvalidStatusFilter = errs.NewKind(errs.KindValidation, "invalid status filter")
	ErrInvalidProfileKind  = errs.NewKind(errs.KindValidation, "invalid profile kind")
)
