package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/database"
	"wizardgo/migrations"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	logger := discardLogger()

	stores, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}, logger)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if stores.Driver != config.StorageDriverMemory || stores.DB != nil {
		t.Errorf("stores = %+v", stores)
	}
	if stores.Profiles == nil || stores.Items == nil || stores.Battles == nil || stores.Institutions == nil {
		t.Error("memory stores must all be set")
	}
	if err := stores.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}, logger); err == nil {
		t.Error("Open() expected error for unsupported driver")
	}
}

func TestMigrationSource(t *testing.T) {
	embedded := migrationSource(&config.Config{}, discardLogger())
	if embedded != migrations.FS {
		t.Errorf("empty DB_MIGRATIONS_PATH should use the embedded schema")
	}

	disk := migrationSource(&config.Config{Database: config.DatabaseConfig{MigrationsPath: "../../migrations"}}, discardLogger())
	fromDisk, err := database.LoadMigrations(disk)
	if err != nil {
		t.Fatalf("LoadMigrations(disk) error = %v", err)
	}
	fromBinary, err := database.LoadMigrations(embedded)
	if err != nil {
		t.Fatalf("LoadMigrations(embedded) error = %v", err)
	}
	if len(fromDisk) != len(fromBinary) || fromDisk[0].SQL != fromBinary[0].SQL {
		t.Errorf("disk and embedded migrations differ: %d vs %d files", len(fromDisk), len(fromBinary))
	}
}
