//go:build integration

// Package dbtest opens a migrated PostGIS database for integration tests.
// Connection settings come from the DB_* environment variables, with DB_NAME
// defaulting to wizardgo_test. Tests are skipped when no database answers.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/database"
	"wizardgo/internal/shared/utils"
	"wizardgo/migrations"
)

func Open(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{Database: config.DatabaseConfig{
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "wizardgo_test"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Minute,
	}}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
