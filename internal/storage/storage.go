// Package storage opens the configured backing store and exposes it through
// the per-domain Store interfaces.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"wizardgo/internal/battle"
	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/memory"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/database"
	"wizardgo/migrations"
)

type Stores struct {
	Driver       string
	Profiles     profile.Store
	Items        item.Store
	Battles      battle.Store
	Institutions institution.Store

	// DB is nil for the memory driver.
	DB *database.DB
}

// Open connects to the store named by cfg.Storage.Driver, running migrations
// for Postgres.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	logger = logger.With("component", "storage", "driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return NewMemory(memory.New()), nil

	case config.StorageDriverPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, migrationSource(cfg, logger)); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logger.Error("Failed to close database after migration failure", "error", closeErr)
			}
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Stores{
			Driver:       config.StorageDriverPostgres,
			Profiles:     profile.NewRepository(db, logger),
			Items:        item.NewRepository(db, logger),
			Battles:      battle.NewRepository(db, logger),
			Institutions: institution.NewRepository(db, logger),
			DB:           db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// migrationSource reads DB_MIGRATIONS_PATH when set and the embedded schema
// otherwise.
func migrationSource(cfg *config.Config, logger *slog.Logger) fs.FS {
	if dir := cfg.Database.MigrationsPath; dir != "" {
		logger.Info("Reading migrations from disk", "dir", dir)
		return os.DirFS(dir)
	}
	return migrations.FS
}

func NewMemory(m *memory.Store) *Stores {
	return &Stores{
		Driver:       config.StorageDriverMemory,
		Profiles:     m.Profiles(),
		Items:        m.Items(),
		Battles:      m.Battles(),
		Institutions: m.Institutions(),
	}
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
