package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/health"
	"github.com/alejoevilches/laabuelachela/internal/storage/memory"
	"github.com/alejoevilches/laabuelachela/internal/storage/postgres"
)

// runtimeDependencies держит хранилища, выбранные по Config.StorageDriver.
type runtimeDependencies struct {
	orders   domain.OrderStore
	products domain.ProductStore
	checkers map[string]health.Checker
	close    func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			orders:   store,
			products: store,
			checkers: map[string]health.Checker{},
			close:    func() error { return nil },
		}, nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		store.SetLogger(logger.WithField("component", "postgres-store"))
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		logger.Info("using postgres storage")
		return &runtimeDependencies{
			orders:   store,
			products: store,
			checkers: map[string]health.Checker{"storage": health.CheckerFunc(store.Ping)},
			close:    store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
