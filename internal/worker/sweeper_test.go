//go:build unit

package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/shared"
	"facility-booking/internal/worker"
	commandsmock "facility-booking/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeperRunNow(t *testing.T) {
	cfg := config.SweepConfig{ExpireInterval: time.Minute, StartInterval: time.Minute, CompleteInterval: time.Minute}

	t.Run("no kinds runs the lifecycle sweeps, then the reminders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeps := commandsmock.NewMockSweepCommands(ctrl)
		gomock.InOrder(
			sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepExpire).Return(commands.SweepResult{Kind: shared.SweepExpire, Transitioned: 1}, nil),
			sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepStart).Return(commands.SweepResult{Kind: shared.SweepStart}, nil),
			sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepComplete).Return(commands.SweepResult{Kind: shared.SweepComplete}, nil),
			sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepRemind).Return(commands.SweepResult{Kind: shared.SweepRemind}, nil),
			sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepReviewRemind).Return(commands.SweepResult{Kind: shared.SweepReviewRemind}, nil),
		)

		results, err := worker.NewSweeper(sweeps, cfg, discardLogger()).RunNow(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 5)
		assert.Equal(t, shared.SweepExpire, results[0].Kind)
		assert.Equal(t, 1, results[0].Transitioned)
	})

	t.Run("selected kinds only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeps := commandsmock.NewMockSweepCommands(ctrl)
		sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepComplete).Return(commands.SweepResult{Kind: shared.SweepComplete}, nil)

		results, err := worker.NewSweeper(sweeps, cfg, discardLogger()).RunNow(context.Background(), shared.SweepComplete)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("unknown kind stops before running anything", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeps := commandsmock.NewMockSweepCommands(ctrl)

		_, err := worker.NewSweeper(sweeps, cfg, discardLogger()).RunNow(context.Background(), shared.SweepKind("purge"))
		assert.ErrorIs(t, err, commands.ErrUnknownSweep)
	})

	t.Run("failure returns the results so far", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeps := commandsmock.NewMockSweepCommands(ctrl)
		boom := errors.New("store unavailable")
		sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepExpire).Return(commands.SweepResult{Kind: shared.SweepExpire}, nil)
		sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepStart).Return(commands.SweepResult{}, boom)

		results, err := worker.NewSweeper(sweeps, cfg, discardLogger()).RunNow(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Len(t, results, 1)
	})
}

func TestSweeperStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweeps := commandsmock.NewMockSweepCommands(ctrl)

	var expires, starts atomic.Int32
	sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepExpire).DoAndReturn(
		func(context.Context, shared.SweepKind) (commands.SweepResult, error) {
			expires.Add(1)
			return commands.SweepResult{Kind: shared.SweepExpire}, nil
		}).AnyTimes()
	sweeps.EXPECT().Sweep(gomock.Any(), shared.SweepStart).DoAndReturn(
		func(context.Context, shared.SweepKind) (commands.SweepResult, error) {
			starts.Add(1)
			return commands.SweepResult{}, errors.New("transient")
		}).AnyTimes()

	// complete is disabled by its non-positive interval
	s := worker.NewSweeper(sweeps, config.SweepConfig{
		ExpireInterval: 5 * time.Millisecond,
		StartInterval:  5 * time.Millisecond,
	}, discardLogger())

	s.Start(context.Background())
	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return expires.Load() >= 2 && starts.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := expires.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, expires.Load())

	s.Stop()
}
