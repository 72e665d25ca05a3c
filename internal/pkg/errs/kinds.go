package errs

import cr "github.com/cockroachdb/errors"

// Kind classifies a failure for callers and the transport layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindPermission   Kind = "permission"
	KindConflict     Kind = "conflict"
	KindPrecondition Kind = "precondition"
	KindConcurrency  Kind = "concurrency"
)

// Marker errors. Only ever used as Mark references.
var (
	ErrValidation   = cr.New("validation error")
	ErrNotFound     = cr.New("not found error")
	ErrPermission   = cr.New("permission error")
	ErrConflict     = cr.New("conflict error")
	ErrPrecondition = cr.New("precondition error")
	ErrConcurrency  = cr.New("concurrency error")
)

var kindMarkers = []struct {
	kind   Kind
	marker error
}{
	{KindValidation, ErrValidation},
	{KindNotFound, ErrNotFound},
	{KindPermission, ErrPermission},
	{KindConflict, ErrConflict},
	{KindPrecondition, ErrPrecondition},
	{KindConcurrency, ErrConcurrency},
}

func markerFor(kind Kind) error {
	for _, km := range kindMarkers {
		if km.kind == kind {
			return km.marker
		}
	}
	return nil
}

// WithKind marks err so that IsKind(err, kind) reports true through any later wrapping.
func WithKind(err error, kind Kind) error {
	marker := markerFor(kind)
	if err == nil || marker == nil {
		return err
	}
	return cr.Mark(err, marker)
}

// NewKind creates a sentinel already classified with kind.
func NewKind(kind Kind, msg string) error {
	return WithKind(cr.New(msg), kind)
}

func IsKind(err error, kind Kind) bool {
	marker := markerFor(kind)
	if err == nil || marker == nil {
		return false
	}
	return cr.Is(err, marker)
}

// KindOf returns the first kind err was marked with.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	for _, km := range kindMarkers {
		if cr.Is(err, km.marker) {
			return km.kind, true
		}
	}
	return "", false
}
