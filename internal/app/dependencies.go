package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/storage/memory"
	"github.com/vladislavdragonenkov/messeorder/internal/storage/postgres"
)

// runtimeDependencies - хранилища, выбранные драйвером архива.
type runtimeDependencies struct {
	archive domain.OrderArchive
	outbox  domain.OutboxRepository
	ping    func(ctx context.Context) error
	close   func() error
}

// initRuntimeDependencies открывает архив заказов и outbox.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.ArchiveDriver {
	case "", ArchiveDriverMemory:
		archive := memory.NewArchive()
		logger.Info("order archive: memory")
		return &runtimeDependencies{
			archive: archive,
			outbox:  archive,
			ping:    archive.Ping,
			close:   func() error { return nil },
		}, nil

	case ArchiveDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres archive requires dsn")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			state, err := store.MigrationStatus(ctx)
			if err == nil {
				logger.WithFields(log.Fields{
					"version": state.Version,
					"applied": state.Applied,
				}).Info("postgres migrations applied")
			}
		}
		logger.Info("order archive: postgres")
		return &runtimeDependencies{
			archive: postgres.NewArchive(store),
			outbox:  postgres.NewOutbox(store),
			ping:    store.Ping,
			close:   store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedArchiveDriver, cfg.ArchiveDriver)
	}
}
