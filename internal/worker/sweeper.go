// Package worker runs the periodic lifecycle sweeps.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/shared"
)

type schedule struct {
	kind     shared.SweepKind
	interval time.Duration
}

// Sweeper owns one ticker per sweep kind. Runs of the same kind never overlap within a process;
// across processes the per-reservation compare-and-swap keeps duplicate runs harmless.
type Sweeper struct {
	sweeps    commands.SweepCommands
	schedules []schedule
	logger    *slog.Logger

	mu      sync.Mutex
	running map[shared.SweepKind]*sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSweeper(sweeps commands.SweepCommands, cfg config.SweepConfig, logger *slog.Logger) *Sweeper {
	s := &Sweeper{
		sweeps: sweeps,
		schedules: []schedule{
			{kind: shared.SweepExpire, interval: cfg.ExpireInterval},
			{kind: shared.SweepStart, interval: cfg.StartInterval},
			{kind: shared.SweepComplete, interval: cfg.CompleteInterval},
			{kind: shared.SweepRemind, interval: cfg.RemindInterval},
			{kind: shared.SweepReviewRemind, interval: cfg.ReviewRemindInterval},
		},
		logger:  logger,
		running: make(map[shared.SweepKind]*sync.Mutex),
	}
	for _, sc := range s.schedules {
		s.running[sc.kind] = &sync.Mutex{}
	}
	return s
}

// Start launches the tickers. It returns immediately; Stop waits for in-flight sweeps.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, sc := range s.schedules {
		if sc.interval <= 0 {
			s.logger.Warn("sweep disabled, non-positive interval", slog.String("sweep", string(sc.kind)))
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, sc)
	}
	s.logger.Info("sweeper started")
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context, sc schedule) {
	defer s.wg.Done()

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.run(ctx, sc.kind); err != nil && ctx.Err() == nil {
				s.logger.Error("scheduled sweep failed",
					slog.String("sweep", string(sc.kind)),
					slog.String("error", err.Error()))
			}
		}
	}
}

// RunNow runs the given sweeps immediately, or all of them in schedule order: the lifecycle
// transitions first, then the reminders.
func (s *Sweeper) RunNow(ctx context.Context, kinds ...shared.SweepKind) ([]commands.SweepResult, error) {
	if len(kinds) == 0 {
		for _, sc := range s.schedules {
			kinds = append(kinds, sc.kind)
		}
	}

	results := make([]commands.SweepResult, 0, len(kinds))
	for _, kind := range kinds {
		if !kind.IsValid() {
			return results, commands.ErrUnknownSweep
		}
		res, err := s.run(ctx, kind)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Sweeper) run(ctx context.Context, kind shared.SweepKind) (commands.SweepResult, error) {
	lock := s.running[kind]
	lock.Lock()
	defer lock.Unlock()
	return s.sweeps.Sweep(ctx, kind)
}
