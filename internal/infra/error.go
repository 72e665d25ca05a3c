package infra

import (
	"errors"
	"log/slog"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/pkg/errs"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	if kind == KindDBFailure {
		slogger.Error("Repository error: "+msg, slog.String("kind", string(kind)), slog.Any("error", err))
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: kind, msg: msg, err: err}
}

// NotFound and StaleWrite are expected outcomes, not failures worth logging.
func NotFound(msg string) error {
	return RepositoryError{Kind: KindNotFound, msg: msg}
}

func StaleWrite(msg string) error {
	return errs.WithKind(RepositoryError{Kind: KindStaleWrite, msg: msg, err: errs.ErrStaleWrite}, errs.KindConcurrency)
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Translate maps store outcomes onto domain errors. notFound is returned for KindNotFound.
func Translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case IsKind(err, KindNotFound) && notFound != nil:
		return notFound
	case IsKind(err, KindExclusionViolated):
		return reservation.ErrSlotConflict
	case IsKind(err, KindStaleWrite):
		return err
	}
	if _, ok := errs.KindOf(err); ok {
		return err
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindExclusionViolated  RepositoryErrorKind = "EXCLUSION_VIOLATED"
	KindStaleWrite         RepositoryErrorKind = "STALE_WRITE"
)
