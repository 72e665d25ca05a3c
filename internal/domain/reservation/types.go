package reservation

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses still occupy their time slot.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusInProgress}

// QuotaStatuses count towards the same-day limit.
var QuotaStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentSucceeded, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Party records who initiated a cancellation.
type Party string

const (
	PartyConsumer Party = "coach"
	PartyOwner    Party = "facility"
	PartySystem   Party = "system"
)

func (p Party) String() string {
	return string(p)
}

func (p Party) IsValid() bool {
	switch p {
	case PartyConsumer, PartyOwner, PartySystem:
		return true
	default:
		return false
	}
}

const (
	ReasonUnpaidExpired    = "payment not completed in time"
	ReasonPaymentCancelled = "payment cancelled"
)
