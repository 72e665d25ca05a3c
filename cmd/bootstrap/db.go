package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"facility-booking/internal/infra/db"
	"facility-booking/internal/infra/memstore"
	"facility-booking/internal/infra/uow"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork picks the store from STORE_DRIVER.
func NewUnitOfWork(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.UnitOfWork, error) {
	switch cfg.Store.Driver {
	case driverPostgres:
		pool, err := NewDB(lc, cfg)
		if err != nil {
			return nil, err
		}
		return uow.NewPostgresUoW(pool, logger), nil
	case driverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.NewUnitOfWork(memstore.NewStore()), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
