package components

import (
	"context"
	"log/slog"

	"facility-booking/internal/handler/api"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(sweeper *worker.Sweeper) api.SweepRunner { return sweeper },
		func(sweeps commands.SweepCommands, cfg config.Config, logger *slog.Logger) *worker.Sweeper {
			return worker.NewSweeper(sweeps, cfg.Sweep, logger)
		},
	),
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, cfg config.Config, sweeper *worker.Sweeper, logger *slog.Logger) {
	if !cfg.Sweep.Enabled {
		logger.Info("periodic sweeps disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
