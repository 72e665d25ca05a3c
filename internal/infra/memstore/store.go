// Package memstore is a process-local store used by STORE_DRIVER=memory and by unit tests.
// Write transactions are serialized and rolled back from an undo log.
package memstore

import (
	"context"
	"sync"

	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/domain/review"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const maxAttempts = 3

var errReadOnly = errs.New("write attempted in read-only transaction")

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	reservations map[uuid.UUID]reservation.State
	facilities   map[uuid.UUID]facilityRow
	spaces       map[uuid.UUID]*facility.Space
	reviews      map[uuid.UUID]reviewRow
	ratings      map[review.Target]shared.RatingRecord
}

func NewStore() *Store {
	return &Store{
		reservations: make(map[uuid.UUID]reservation.State),
		facilities:   make(map[uuid.UUID]facilityRow),
		spaces:       make(map[uuid.UUID]*facility.Space),
		reviews:      make(map[uuid.UUID]reviewRow),
		ratings:      make(map[review.Target]shared.RatingRecord),
	}
}

type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) shared.UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = u.runWrite(ctx, fn); err == nil || !errs.IsKind(err, errs.KindConcurrency) {
			return err
		}
	}
	return errs.WithKind(errs.Mark(err, errs.ErrRetriesExhausted), errs.KindConcurrency)
}

// WithinBookingScope needs nothing beyond Within: write transactions never interleave here.
func (u *UnitOfWork) WithinBookingScope(ctx context.Context, _ shared.BookingScope, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.Within(ctx, fn)
}

func (u *UnitOfWork) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &memTx{store: u.store, readOnly: true})
}

func (u *UnitOfWork) runWrite(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	tx := &memTx{store: u.store}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memTx struct {
	store    *Store
	readOnly bool
	undo     []func()
}

func (t *memTx) Reservations() shared.ReservationRepository { return &reservationRepo{tx: t} }
func (t *memTx) Facilities() shared.FacilityRepository      { return &facilityRepo{tx: t} }
func (t *memTx) Reviews() shared.ReviewRepository           { return &reviewRepo{tx: t} }
func (t *memTx) Ratings() shared.RatingRepository           { return &ratingRepo{tx: t} }

// write runs mutate under the data lock and records how to revert it.
func (t *memTx) write(mutate func() (undo func(), err error)) error {
	if t.readOnly {
		return errReadOnly
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	undo, err := mutate()
	if err != nil {
		return err
	}
	t.undo = append(t.undo, undo)
	return nil
}

func (t *memTx) read(fn func()) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	fn()
}

func (t *memTx) rollback() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// restore returns an undo func that puts m[k] back to its state before a write.
func restore[K comparable, V any](m map[K]V, k K) func() {
	prev, existed := m[k]
	return func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	}
}
