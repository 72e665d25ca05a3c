//go:build unit

package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"facility-booking/internal/domain/actor"
	"facility-booking/internal/domain/facility"
	"facility-booking/internal/domain/intent"
	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra/idempotency"
	"facility-booking/internal/infra/memstore"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/queries"
	"facility-booking/internal/usecase/shared"
	"facility-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// capturePublisher records every published intent.
type capturePublisher struct {
	mu      sync.Mutex
	intents []intent.Intent
	fail    bool
}

func (p *capturePublisher) Publish(_ context.Context, intents ...intent.Intent) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = append(p.intents, intents...)
	return nil
}

func (p *capturePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = nil
}

func (p *capturePublisher) charges() []intent.ChargeRequest {
	return collect[intent.ChargeRequest](p)
}

func (p *capturePublisher) refunds() []intent.RefundRequest {
	return collect[intent.RefundRequest](p)
}

func (p *capturePublisher) notifications(t intent.NotificationType) []intent.Notification {
	var out []intent.Notification
	for _, n := range collect[intent.Notification](p) {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func collect[T intent.Intent](p *capturePublisher) []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []T
	for _, in := range p.intents {
		if v, ok := in.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

type env struct {
	ctx       context.Context
	uow       shared.UnitOfWork
	clock     *clock.MockClock
	policy    reservation.Policy
	publisher *capturePublisher
	logger    *slog.Logger

	reservations commands.ReservationCommands
	payments     commands.PaymentCommands
	reviews      commands.ReviewCommands
	sweeps       commands.SweepCommands
	resQueries   queries.ReservationQueries
	revQueries   queries.ReviewQueries

	facility *facility.Facility
	owner    actor.Actor
}

// 2030-05-01 is a Wednesday; 10:00 UTC is noon in Paris.
var envNow = time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

func newEnv(t *testing.T, tweak ...func(*reservation.Policy)) *env {
	t.Helper()

	policy := reservation.DefaultPolicy()
	for _, f := range tweak {
		f(&policy)
	}
	require.NoError(t, policy.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewMockClock(envNow)
	uow := memstore.NewUnitOfWork(memstore.NewStore())
	pub := &capturePublisher{}
	factory := reservation.NewFactory(clk, policy, reservation.NewDefaultPriceCalculator(policy))

	e := &env{
		ctx:          context.Background(),
		uow:          uow,
		clock:        clk,
		policy:       policy,
		publisher:    pub,
		logger:       logger,
		reservations: commands.NewReservationUseCase(uow, factory, idempotency.NewMemoryStore(clk), time.Hour, pub, clk, logger),
		payments:     commands.NewPaymentUseCase(uow, policy, pub, clk, logger),
		reviews:      commands.NewReviewUseCase(uow, policy, 50, pub, clk, logger),
		sweeps:       commands.NewSweepUseCase(uow, policy, commands.SweepOptions{BatchSize: 100, Parallelism: 4}, pub, clk, logger),
		resQueries:   queries.NewReservationQueries(uow),
		revQueries:   queries.NewReviewQueries(uow),
	}
	e.owner = actor.New(uuid.New(), actor.RoleOwner)
	e.facility = e.addFacility(t, e.owner.ID, "50")
	return e
}

func (e *env) addFacility(t *testing.T, ownerID uuid.UUID, rate string) *facility.Facility {
	t.Helper()
	f := builder.NewFacilityBuilder().WithOwnerID(ownerID).WithHourlyRate(rate).Build()
	require.NoError(t, e.uow.Within(e.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Facilities().Insert(ctx, f)
	}))
	return f
}

func (e *env) coach() actor.Actor {
	return actor.New(uuid.New(), actor.RoleCoach)
}

func (e *env) input(startIn, length time.Duration) commands.CreateReservationInput {
	start := e.clock.Now().Add(startIn)
	return commands.CreateReservationInput{
		FacilityID: e.facility.ID(),
		Start:      start,
		End:        start.Add(length),
	}
}

func (e *env) create(t *testing.T, coach actor.Actor, startIn, length time.Duration) *reservation.Reservation {
	t.Helper()
	res, err := e.reservations.CreateReservation(e.ctx, coach, e.input(startIn, length))
	require.NoError(t, err)
	return res.Reservation
}

func (e *env) pay(t *testing.T, id uuid.UUID) *reservation.Reservation {
	t.Helper()
	res, _, err := e.payments.HandlePaymentEvent(e.ctx, commands.PaymentEvent{
		Type:          commands.PaymentSucceeded,
		ReservationID: id,
		Reference:     "pi_" + id.String()[:8],
		Method:        "card",
	})
	require.NoError(t, err)
	return res
}

func (e *env) reload(t *testing.T, id uuid.UUID) *reservation.Reservation {
	t.Helper()
	res, err := e.resQueries.GetReservation(e.ctx, actor.New(uuid.New(), actor.RoleAdmin), id)
	require.NoError(t, err)
	return res
}

func (e *env) totalBookings(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.uow.WithinReadOnly(e.ctx, func(ctx context.Context, tx shared.Tx) error {
		f, err := tx.Facilities().FindByID(ctx, e.facility.ID())
		if err != nil {
			return err
		}
		n = f.TotalBookings()
		return nil
	}))
	return n
}

func (e *env) addInactiveFacility(t *testing.T) *facility.Facility {
	t.Helper()
	f := builder.NewFacilityBuilder().WithOwnerID(e.owner.ID).WithHourlyRate("50").Inactive().Build()
	require.NoError(t, e.uow.Within(e.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Facilities().Insert(ctx, f)
	}))
	return f
}
