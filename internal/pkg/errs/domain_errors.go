package errs

// Cross-cutting sentinel errors shared by the use case and transport layers.
// Aggregate specific errors live next to their aggregates.
var (
	// Store errors
	ErrStaleWrite              = NewKind(KindConcurrency, "stale write: record changed concurrently")
	ErrRetriesExhausted        = NewKind(KindConcurrency, "transaction retries exhausted")
	ErrDatabaseOperationFailed = New("database operation failed")

	// Idempotency errors
	ErrIdempotencyKeyInvalid = NewKind(KindValidation, "invalid idempotency key")
	ErrIdempotencyInProgress = NewKind(KindConflict, "request with this idempotency key is in progress")

	// Pagination
	ErrInvalidCursor = NewKind(KindValidation, "invalid cursor")

	// Access
	ErrForbidden = NewKind(KindPermission, "actor is not allowed to perform this action")
)
