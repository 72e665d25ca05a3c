package components

import (
	"log/slog"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra/metrics"
	"facility-booking/internal/pkg/clock"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/queries"
	"facility-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Options(
	fx.Provide(
		clock.NewRealClock,
		fx.Annotate(
			reservation.NewDefaultPriceCalculator,
			fx.As(new(reservation.PriceCalculator)),
		),
		reservation.NewFactory,
	),
	fx.Invoke(metrics.Register),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(
			uow shared.UnitOfWork,
			factory *reservation.Factory,
			store shared.IdempotencyStore,
			cfg config.Config,
			publisher shared.IntentPublisher,
			clk clock.Clock,
			logger *slog.Logger,
		) commands.ReservationCommands {
			return commands.NewReservationUseCase(uow, factory, store, cfg.Idempotency.TTL, publisher, clk, logger)
		},
		commands.NewPaymentUseCase,
		func(
			uow shared.UnitOfWork,
			policy reservation.Policy,
			cfg config.Config,
			publisher shared.IntentPublisher,
			clk clock.Clock,
			logger *slog.Logger,
		) commands.ReviewCommands {
			return commands.NewReviewUseCase(uow, policy, cfg.Booking.RatingWindow, publisher, clk, logger)
		},
		func(
			uow shared.UnitOfWork,
			policy reservation.Policy,
			cfg config.Config,
			publisher shared.IntentPublisher,
			clk clock.Clock,
			logger *slog.Logger,
		) commands.SweepCommands {
			opts := commands.SweepOptions{BatchSize: cfg.Sweep.BatchSize, Parallelism: cfg.Sweep.Parallelism}
			return commands.NewSweepUseCase(uow, policy, opts, publisher, clk, logger)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewReviewQueries,
	),
)
