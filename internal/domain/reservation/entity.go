package reservation

import (
	"slices"
	"time"

	"facility-booking/internal/domain/intent"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cancellation struct {
	Reason       string
	InitiatedBy  Party
	InitiatorID  uuid.UUID
	RefundRate   decimal.Decimal
	RefundAmount Money
	CancelledAt  time.Time
}

type Payment struct {
	Status         PaymentStatus
	Reference      string
	Method         string
	FailureReason  string
	RefundedAmount Money
}

// Transition is the result of applying an event. Changed is false for idempotent replays.
type Transition struct {
	From    Status
	To      Status
	Changed bool
	Intents []intent.Intent
}

func (t Transition) Confirmed() bool {
	return t.Changed && t.From == StatusPending && t.To == StatusConfirmed
}

type Reservation struct {
	id             uuid.UUID
	consumerID     uuid.UUID
	ownerID        uuid.UUID
	facilityID     uuid.UUID
	spaceID        *uuid.UUID
	slot           TimeSlot
	pricing        PriceBreakdown
	currency       string
	status         Status
	payment        Payment
	cancellation   *Cancellation
	hasReview      bool
	reviewDeadline *time.Time
	reminderSentAt *time.Time
	reviewReminder *time.Time
	confirmedAt    *time.Time
	startedAt      *time.Time
	completedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
	version        int
}

// State is the flat persisted form of a Reservation.
type State struct {
	ID                   uuid.UUID
	ConsumerID           uuid.UUID
	OwnerID              uuid.UUID
	FacilityID           uuid.UUID
	SpaceID              *uuid.UUID
	Start                time.Time
	End                  time.Time
	Pricing              PriceBreakdown
	Currency             string
	Status               Status
	Payment              Payment
	Cancellation         *Cancellation
	HasReview            bool
	ReviewDeadline       *time.Time
	ReminderSentAt       *time.Time
	ReviewReminderSentAt *time.Time
	ConfirmedAt          *time.Time
	StartedAt            *time.Time
	CompletedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int
}

func Reconstruct(s State) *Reservation {
	var cancellation *Cancellation
	if s.Cancellation != nil {
		c := *s.Cancellation
		cancellation = &c
	}
	return &Reservation{
		id:             s.ID,
		consumerID:     s.ConsumerID,
		ownerID:        s.OwnerID,
		facilityID:     s.FacilityID,
		spaceID:        s.SpaceID,
		slot:           TimeSlot{start: s.Start, end: s.End},
		pricing:        s.Pricing,
		currency:       s.Currency,
		status:         s.Status,
		payment:        s.Payment,
		cancellation:   cancellation,
		hasReview:      s.HasReview,
		reviewDeadline: s.ReviewDeadline,
		reminderSentAt: s.ReminderSentAt,
		reviewReminder: s.ReviewReminderSentAt,
		confirmedAt:    s.ConfirmedAt,
		startedAt:      s.StartedAt,
		completedAt:    s.CompletedAt,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		version:        s.Version,
	}
}

func (r *Reservation) State() State {
	var cancellation *Cancellation
	if r.cancellation != nil {
		c := *r.cancellation
		cancellation = &c
	}
	return State{
		ID:                   r.id,
		ConsumerID:           r.consumerID,
		OwnerID:              r.ownerID,
		FacilityID:           r.facilityID,
		SpaceID:              r.spaceID,
		Start:                r.slot.start,
		End:                  r.slot.end,
		Pricing:              r.pricing,
		Currency:             r.currency,
		Status:               r.status,
		Payment:              r.payment,
		Cancellation:         cancellation,
		HasReview:            r.hasReview,
		ReviewDeadline:       r.reviewDeadline,
		ReminderSentAt:       r.reminderSentAt,
		ReviewReminderSentAt: r.reviewReminder,
		ConfirmedAt:          r.confirmedAt,
		StartedAt:            r.startedAt,
		CompletedAt:          r.completedAt,
		CreatedAt:            r.createdAt,
		UpdatedAt:            r.updatedAt,
		Version:              r.version,
	}
}

// Confirm is the owner's explicit confirmation of a paid booking.
func (r *Reservation) Confirm(actorID uuid.UUID, now time.Time) (Transition, error) {
	if actorID != r.ownerID {
		return Transition{}, ErrNotOwner
	}
	if r.status != StatusPending {
		return Transition{}, ErrNotPending
	}
	if r.payment.Status != PaymentSucceeded {
		return Transition{}, ErrPaymentNotSucceeded
	}

	from := r.status
	r.confirm(now)
	return r.transition(from, r.notifyConsumer(intent.BookingConfirmed)), nil
}

// RecordPaymentSuccess applies a payment-succeeded event. Replays are no-ops. A payment that lands after
// the booking was cancelled is handed back with a full refund request.
func (r *Reservation) RecordPaymentSuccess(reference, method string, autoConfirm bool, now time.Time) (Transition, error) {
	if r.payment.Status == PaymentSucceeded || r.payment.Status == PaymentRefunded {
		return r.unchanged(), nil
	}

	switch r.status {
	case StatusPending:
		from := r.status
		r.markPaid(reference, method, now)
		intents := []intent.Intent{r.notifyOwner(intent.PaymentReceived, "amount", r.pricing.Subtotal.String())}
		if autoConfirm {
			r.confirm(now)
			intents = append(intents, r.notifyConsumer(intent.BookingConfirmed))
		}
		return r.transition(from, intents...), nil

	case StatusCancelled:
		from := r.status
		r.markPaid(reference, method, now)
		total := r.pricing.Total
		if r.cancellation != nil {
			r.cancellation.RefundRate = decimal.NewFromInt(1)
			r.cancellation.RefundAmount = total
		}
		refund := r.refundRequest(total, uuid.Nil, PartySystem, "payment received after cancellation")
		return r.transition(from, refund), nil

	default:
		return Transition{}, ErrNotPending
	}
}

// RecordPaymentFailure keeps the booking open so the consumer can retry.
func (r *Reservation) RecordPaymentFailure(reason string, now time.Time) (Transition, error) {
	if r.status == StatusCancelled {
		return r.unchanged(), nil
	}
	if r.status != StatusPending {
		return Transition{}, ErrNotPending
	}
	if r.payment.Status == PaymentSucceeded || r.payment.Status == PaymentRefunded {
		return Transition{}, ErrPaymentAlreadySucceeded
	}
	if r.payment.Status == PaymentFailed && r.payment.FailureReason == reason {
		return r.unchanged(), nil
	}

	from := r.status
	r.payment.Status = PaymentFailed
	r.payment.FailureReason = reason
	r.touch(now)
	return r.transition(from, r.notifyConsumer(intent.PaymentFailed, "reason", reason)), nil
}

// RequestPayment re-issues the charge request for an unpaid booking.
func (r *Reservation) RequestPayment(actorID uuid.UUID) (intent.ChargeRequest, error) {
	if actorID != r.consumerID {
		return intent.ChargeRequest{}, ErrNotConsumer
	}
	if r.status != StatusPending {
		return intent.ChargeRequest{}, ErrNotPending
	}
	if r.payment.Status != PaymentPending && r.payment.Status != PaymentFailed {
		return intent.ChargeRequest{}, ErrPaymentAlreadySucceeded
	}
	return r.ChargeRequest(), nil
}

// Cancel is available to either party while the booking is Pending or Confirmed.
func (r *Reservation) Cancel(actorID uuid.UUID, reason string, policy Policy, now time.Time) (Transition, error) {
	var party Party
	switch actorID {
	case r.consumerID:
		party = PartyConsumer
	case r.ownerID:
		party = PartyOwner
	default:
		return Transition{}, ErrNotParty
	}
	if r.status != StatusPending && r.status != StatusConfirmed {
		return Transition{}, ErrNotCancellable
	}

	from := r.status
	refund := policy.RefundFor(r.slot.start, now, r.pricing.Total)
	r.cancel(Cancellation{
		Reason:       reason,
		InitiatedBy:  party,
		InitiatorID:  actorID,
		RefundRate:   refund.Rate,
		RefundAmount: refund.Amount,
		CancelledAt:  now,
	}, now)

	var intents []intent.Intent
	if party == PartyConsumer {
		intents = append(intents, r.notifyOwner(intent.BookingCancelled, "initiated_by", party.String(), "reason", reason))
	} else {
		intents = append(intents, r.notifyConsumer(intent.BookingCancelled, "initiated_by", party.String(), "reason", reason))
	}
	if r.payment.Status == PaymentSucceeded && refund.Amount.IsPositive() {
		intents = append(intents, r.refundRequest(refund.Amount, actorID, party, reason))
	}
	return r.transition(from, intents...), nil
}

// ExpireUnpaid cancels a booking whose payment did not succeed within timeout of its creation.
func (r *Reservation) ExpireUnpaid(timeout time.Duration, now time.Time) (Transition, error) {
	if r.status != StatusPending || r.payment.Status == PaymentSucceeded || now.Before(r.createdAt.Add(timeout)) {
		return Transition{}, ErrTransitionNotDue
	}

	from := r.status
	r.cancelBySystem(ReasonUnpaidExpired, now)
	return r.transition(from, r.notifyConsumer(intent.BookingCancelled,
		"initiated_by", PartySystem.String(), "reason", ReasonUnpaidExpired)), nil
}

// AbortPayment handles a gateway-side cancellation of the payment attempt.
func (r *Reservation) AbortPayment(now time.Time) (Transition, error) {
	if r.status != StatusPending {
		return r.unchanged(), nil
	}
	from := r.status
	r.cancelBySystem(ReasonPaymentCancelled, now)
	return r.transition(from, r.notifyConsumer(intent.BookingCancelled,
		"initiated_by", PartySystem.String(), "reason", ReasonPaymentCancelled)), nil
}

// Start moves a confirmed booking into progress once its slot has begun.
func (r *Reservation) Start(now time.Time) (Transition, error) {
	if r.status != StatusConfirmed || now.Before(r.slot.start) || !now.Before(r.slot.end) {
		return Transition{}, ErrTransitionNotDue
	}
	from := r.status
	r.status = StatusInProgress
	r.startedAt = timePtr(now)
	r.touch(now)
	return r.transition(from), nil
}

// Complete closes a booking whose slot has ended and opens the review window.
func (r *Reservation) Complete(reviewWindow time.Duration, now time.Time) (Transition, error) {
	if (r.status != StatusConfirmed && r.status != StatusInProgress) || now.Before(r.slot.end) {
		return Transition{}, ErrTransitionNotDue
	}
	from := r.status
	r.status = StatusCompleted
	r.completedAt = timePtr(now)
	r.reviewDeadline = timePtr(now.Add(reviewWindow))
	r.touch(now)
	return r.transition(from,
		r.notifyConsumer(intent.BookingCompleted),
		r.notifyOwner(intent.BookingCompleted),
	), nil
}

// SendReminder notifies both parties once the start is within lead. It fires at most once per booking
// and not after the slot has begun.
func (r *Reservation) SendReminder(lead time.Duration, now time.Time) (Transition, error) {
	if r.status != StatusConfirmed || r.reminderSentAt != nil ||
		!now.Before(r.slot.start) || r.slot.start.Sub(now) > lead {
		return Transition{}, ErrTransitionNotDue
	}
	r.reminderSentAt = timePtr(now)
	r.touch(now)
	return r.transition(r.status,
		r.notifyConsumer(intent.BookingReminder),
		r.notifyOwner(intent.BookingReminder),
	), nil
}

// RemindReview nudges the parties that have not reviewed a completed booking yet, once delay has passed
// since completion and while the review window is still open. reviewed lists the party ids that already
// left a review. The reminder is recorded even when nobody is left to nudge.
func (r *Reservation) RemindReview(delay, reviewWindow time.Duration, reviewed []uuid.UUID, now time.Time) (Transition, error) {
	if r.status != StatusCompleted || r.reviewReminder != nil || r.completedAt == nil ||
		now.Before(r.completedAt.Add(delay)) || now.After(r.ReviewDeadlineAt(reviewWindow)) {
		return Transition{}, ErrTransitionNotDue
	}

	var intents []intent.Intent
	if !slices.Contains(reviewed, r.consumerID) {
		intents = append(intents, r.notifyConsumer(intent.ReviewReminder))
	}
	if !slices.Contains(reviewed, r.ownerID) {
		intents = append(intents, r.notifyOwner(intent.ReviewReminder))
	}
	r.reviewReminder = timePtr(now)
	r.touch(now)
	return r.transition(r.status, intents...), nil
}

// RecordRefund applies the gateway's refund confirmation.
func (r *Reservation) RecordRefund(amount Money, full bool, now time.Time) (Transition, error) {
	if r.payment.Status == PaymentRefunded {
		return r.unchanged(), nil
	}
	if r.status != StatusCancelled || r.payment.Status != PaymentSucceeded {
		return Transition{}, ErrNotRefundable
	}
	from := r.status
	r.payment.RefundedAmount = amount
	if full {
		r.payment.Status = PaymentRefunded
	}
	r.touch(now)
	return r.transition(from), nil
}

func (r *Reservation) MarkReviewed(now time.Time) {
	r.hasReview = true
	r.touch(now)
}

// ReviewDeadlineAt falls back to the slot end when completion time was never recorded.
func (r *Reservation) ReviewDeadlineAt(window time.Duration) time.Time {
	if r.reviewDeadline != nil {
		return *r.reviewDeadline
	}
	if r.completedAt != nil {
		return r.completedAt.Add(window)
	}
	return r.slot.end.Add(window)
}

func (r *Reservation) IsParty(actorID uuid.UUID) bool {
	return actorID == r.consumerID || actorID == r.ownerID
}

func (r *Reservation) ChargeRequest() intent.ChargeRequest {
	return intent.ChargeRequest{
		ReservationID: r.id,
		ConsumerID:    r.consumerID,
		FacilityID:    r.facilityID,
		OwnerID:       r.ownerID,
		Amount:        r.pricing.Total.Amount(),
		AmountCents:   r.pricing.Total.Cents(),
		Currency:      r.currency,
	}
}

func (r *Reservation) confirm(now time.Time) {
	r.status = StatusConfirmed
	r.confirmedAt = timePtr(now)
	r.touch(now)
}

func (r *Reservation) markPaid(reference, method string, now time.Time) {
	r.payment.Status = PaymentSucceeded
	r.payment.FailureReason = ""
	if reference != "" {
		r.payment.Reference = reference
	}
	if method != "" {
		r.payment.Method = method
	}
	r.touch(now)
}

func (r *Reservation) cancel(c Cancellation, now time.Time) {
	r.status = StatusCancelled
	r.cancellation = &c
	r.touch(now)
}

func (r *Reservation) cancelBySystem(reason string, now time.Time) {
	r.cancel(Cancellation{
		Reason:       reason,
		InitiatedBy:  PartySystem,
		RefundRate:   decimal.Zero,
		RefundAmount: ZeroMoney(),
		CancelledAt:  now,
	}, now)
}

func (r *Reservation) touch(now time.Time) {
	r.updatedAt = now
}

func (r *Reservation) transition(from Status, intents ...intent.Intent) Transition {
	return Transition{From: from, To: r.status, Changed: true, Intents: intents}
}

func (r *Reservation) unchanged() Transition {
	return Transition{From: r.status, To: r.status}
}

func (r *Reservation) notifyConsumer(t intent.NotificationType, kv ...string) intent.Notification {
	return r.notification(t, r.consumerID, kv...)
}

func (r *Reservation) notifyOwner(t intent.NotificationType, kv ...string) intent.Notification {
	return r.notification(t, r.ownerID, kv...)
}

func (r *Reservation) notification(t intent.NotificationType, recipient uuid.UUID, kv ...string) intent.Notification {
	data := map[string]string{
		"reservation_id": r.id.String(),
		"facility_id":    r.facilityID.String(),
		"start":          r.slot.start.UTC().Format(time.RFC3339),
		"end":            r.slot.end.UTC().Format(time.RFC3339),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			data[kv[i]] = kv[i+1]
		}
	}
	return intent.Notification{Type: t, RecipientID: recipient, SubjectID: r.id, Data: data}
}

func (r *Reservation) refundRequest(amount Money, initiator uuid.UUID, party Party, reason string) intent.RefundRequest {
	return intent.RefundRequest{
		ReservationID:    r.id,
		Amount:           amount.Amount(),
		OriginalAmount:   r.pricing.Total.Amount(),
		Currency:         r.currency,
		PaymentReference: r.payment.Reference,
		InitiatedBy:      initiator,
		InitiatorRole:    party.String(),
		Reason:           reason,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func (r *Reservation) ID() uuid.UUID                { return r.id }
func (r *Reservation) ConsumerID() uuid.UUID        { return r.consumerID }
func (r *Reservation) OwnerID() uuid.UUID           { return r.ownerID }
func (r *Reservation) FacilityID() uuid.UUID        { return r.facilityID }
func (r *Reservation) SpaceID() *uuid.UUID          { return r.spaceID }
func (r *Reservation) TimeSlot() TimeSlot           { return r.slot }
func (r *Reservation) Pricing() PriceBreakdown      { return r.pricing }
func (r *Reservation) Currency() string             { return r.currency }
func (r *Reservation) Status() Status               { return r.status }
func (r *Reservation) Payment() Payment             { return r.payment }
func (r *Reservation) Cancellation() *Cancellation  { return r.cancellation }
func (r *Reservation) HasReview() bool              { return r.hasReview }
func (r *Reservation) ReviewDeadline() *time.Time   { return r.reviewDeadline }
func (r *Reservation) ReminderSentAt() *time.Time   { return r.reminderSentAt }
func (r *Reservation) ConfirmedAt() *time.Time      { return r.confirmedAt }
func (r *Reservation) StartedAt() *time.Time        { return r.startedAt }
func (r *Reservation) CompletedAt() *time.Time      { return r.completedAt }
func (r *Reservation) CreatedAt() time.Time         { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time         { return r.updatedAt }
func (r *Reservation) Version() int                 { return r.version }
