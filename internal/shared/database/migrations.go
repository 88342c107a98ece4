package database

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// migrationLockKey serializes schema changes across server instances.
const migrationLockKey int64 = 0x77697a617264

var migrationFileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)

// Migration is one schema change read from a NNN_name.sql file. File is the
// key recorded in schema_migrations.
type Migration struct {
	Version int
	File    string
	SQL     string
}

// LoadMigrations reads the top-level .sql files of fsys ordered by version.
// Badly named, empty or duplicate-version files are errors.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var out []Migration
	byVersion := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}

		match := migrationFileName.FindStringSubmatch(e.Name())
		if match == nil {
			return nil, fmt.Errorf("migration %q is not named NNN_name.sql", e.Name())
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration %q: bad version: %w", e.Name(), err)
		}
		if prev, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("migrations %q and %q share version %d", prev, e.Name(), version)
		}
		byVersion[version] = e.Name()

		content, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", e.Name(), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("migration %q is empty", e.Name())
		}

		out = append(out, Migration{Version: version, File: e.Name(), SQL: string(content)})
	}

	slices.SortFunc(out, func(a, b Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return out, nil
}

// Pending returns the migrations not yet recorded in applied, in order.
func Pending(all []Migration, applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.File] {
			out = append(out, m)
		}
	}
	return out
}

// RunMigrations applies the pending migrations in fsys in one transaction
// holding an advisory lock, so concurrent starts apply each file once.
func (db *DB) RunMigrations(ctx context.Context, fsys fs.FS) error {
	logger := slog.With("component", "migrations")

	migrations, err := LoadMigrations(fsys)
	if err != nil {
		logger.Error("Failed to load migrations", "error", err)
		return err
	}
	logger.Info("Loaded migrations", "count", len(migrations))

	return db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
			return fmt.Errorf("failed to take migration lock: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version VARCHAR(255) PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT NOW()
			)`); err != nil {
			return fmt.Errorf("failed to create schema_migrations: %w", err)
		}

		applied, err := appliedMigrations(ctx, tx)
		if err != nil {
			return err
		}

		pending := Pending(migrations, applied)
		if len(pending) == 0 {
			logger.Info("Schema is up to date", "applied", len(applied))
			return nil
		}

		for _, m := range pending {
			logger.Info("Applying migration", "migration", m.File, "size_bytes", len(m.SQL))
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				logger.Error("Migration failed", "migration", m.File, "error", err)
				return fmt.Errorf("migration %s: %w", m.File, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.File); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.File, err)
			}
		}

		logger.Info("Migrations applied", "count", len(pending))
		return nil
	})
}

func appliedMigrations(ctx context.Context, ex Executor) (map[string]bool, error) {
	rows, err := ex.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan schema_migrations: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
