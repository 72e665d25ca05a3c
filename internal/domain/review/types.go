package review

import (
	"facility-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating       = errs.NewKind(errs.KindValidation, "rating must be between 1 and 5")
	ErrInvalidCategory     = errs.NewKind(errs.KindValidation, "invalid rating category")
	ErrTooManyCategories   = errs.NewKind(errs.KindValidation, "too many rating categories")
	ErrCommentTooShort     = errs.NewKind(errs.KindValidation, "comment is below the minimum length")
	ErrCommentTooLong      = errs.NewKind(errs.KindValidation, "comment exceeds maximum length")
	ErrInvalidReviewType   = errs.NewKind(errs.KindValidation, "invalid review type")
	ErrReviewTypeMismatch  = errs.NewKind(errs.KindValidation, "review type does not match the reviewer's role")
	ErrWrongReviewee       = errs.NewKind(errs.KindValidation, "reviewee is not the counterpart of this reservation")
	ErrReviewNotFound      = errs.NewKind(errs.KindNotFound, "review not found")
	ErrNotParticipant      = errs.NewKind(errs.KindPermission, "reviewer is not a party to the reservation")
	ErrNotAuthor           = errs.NewKind(errs.KindPermission, "only the author or an admin may remove a review")
	ErrModeratorOnly       = errs.NewKind(errs.KindPermission, "only an admin may change review visibility")
	ErrReservationNotEnded = errs.NewKind(errs.KindPrecondition, "reviews are only accepted for completed reservations")
	ErrReviewWindowClosed  = errs.NewKind(errs.KindPrecondition, "the review window for this reservation has closed")
	ErrReviewAlreadyExists = errs.NewKind(errs.KindConflict, "review already exists for this reservation")
	ErrInvalidReportReason = errs.NewKind(errs.KindValidation, "report reason cannot be empty")
)

type Type string

const (
	TypeCoachToFacility Type = "coach_to_facility"
	TypeFacilityToCoach Type = "facility_to_coach"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	return t == TypeCoachToFacility || t == TypeFacilityToCoach
}

// ProfileKind names where an aggregated rating is written.
type ProfileKind string

const (
	ProfileCoach    ProfileKind = "coach"
	ProfileFacility ProfileKind = "facility"
	// ProfileOwner is the owner-level facility profile shared by all of an owner's facilities.
	ProfileOwner ProfileKind = "owner"
)

func (k ProfileKind) IsValid() bool {
	switch k {
	case ProfileCoach, ProfileFacility, ProfileOwner:
		return true
	default:
		return false
	}
}

type Target struct {
	Kind ProfileKind
	ID   uuid.UUID
}
