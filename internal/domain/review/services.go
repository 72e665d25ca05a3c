package review

import (
	"time"

	"facility-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type EligibilityInput struct {
	Reservation     *reservation.Reservation
	ReviewerID      uuid.UUID
	RevieweeID      uuid.UUID
	Type            Type
	AlreadyReviewed bool
	Window          time.Duration
	Now             time.Time
}

// CheckEligibility enforces: completed reservation, reviewer is a party, type matches role,
// reviewee is the counterpart, window still open, first review by this reviewer.
func CheckEligibility(in EligibilityInput) error {
	res := in.Reservation
	if res.Status() != reservation.StatusCompleted {
		return ErrReservationNotEnded
	}

	isConsumer := in.ReviewerID == res.ConsumerID()
	isOwner := in.ReviewerID == res.OwnerID()
	if !isConsumer && !isOwner {
		return ErrNotParticipant
	}

	if isConsumer {
		if in.Type != TypeCoachToFacility {
			return ErrReviewTypeMismatch
		}
		if in.RevieweeID != res.FacilityID() && in.RevieweeID != res.OwnerID() {
			return ErrWrongReviewee
		}
	} else {
		if in.Type != TypeFacilityToCoach {
			return ErrReviewTypeMismatch
		}
		if in.RevieweeID != res.ConsumerID() {
			return ErrWrongReviewee
		}
	}

	if in.Now.After(res.ReviewDeadlineAt(in.Window)) {
		return ErrReviewWindowClosed
	}
	if in.AlreadyReviewed {
		return ErrReviewAlreadyExists
	}
	return nil
}

// RecipientFor is the user notified about a new review.
func RecipientFor(t Type, res *reservation.Reservation) uuid.UUID {
	if t == TypeCoachToFacility {
		return res.OwnerID()
	}
	return res.ConsumerID()
}

// ResolveTargets maps a reviewee to the profiles that carry its rating. A coach_to_facility reviewee is
// either a facility or an owner; an owner fans out to every facility they own plus their owner profile.
func ResolveTargets(t Type, revieweeID uuid.UUID, isFacility bool, ownedFacilities []uuid.UUID) []Target {
	if t == TypeFacilityToCoach {
		return []Target{{Kind: ProfileCoach, ID: revieweeID}}
	}
	if isFacility {
		return []Target{{Kind: ProfileFacility, ID: revieweeID}}
	}
	targets := make([]Target, 0, len(ownedFacilities)+1)
	for _, id := range ownedFacilities {
		targets = append(targets, Target{Kind: ProfileFacility, ID: id})
	}
	return append(targets, Target{Kind: ProfileOwner, ID: revieweeID})
}
