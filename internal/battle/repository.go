package battle

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"wizardgo/internal/shared/database"
	"wizardgo/internal/shared/errors"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing battle repository")
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) MissingProfiles(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	logger := r.logger.With("component", "battle_repository", "operation", "missing_profiles")

	keys := make(pq.StringArray, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM profiles WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		logger.Error("Failed to look up profiles", "error", err)
		return nil, errors.WrapInternal("failed to look up profiles", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapInternal("failed to scan profile id", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating profiles", err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *Repository) Record(ctx context.Context, report Report) (*Log, error) {
	logger := r.logger.With("component", "battle_repository", "operation", "record",
		"attacker_id", report.AttackerID, "defender_id", report.DefenderID, "winner_id", report.WinnerID)

	entry := Log{
		AttackerID: report.AttackerID,
		DefenderID: report.DefenderID,
		WinnerID:   report.WinnerID,
	}

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO battle_logs (attacker_id, defender_id, winner_id)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			report.AttackerID, report.DefenderID, report.WinnerID,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return errors.NotFound("battle participant not found")
			}
			return errors.WrapInternal("failed to insert battle log", err)
		}

		// SET expressions see the pre-update row, so wins + 1 is the new count.
		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET wins = wins + 1,
			    level = level + CASE WHEN (wins + 1) % $2 = 0 THEN 1 ELSE 0 END,
			    updated_at = NOW()
			WHERE id = $1`,
			report.WinnerID, winsPerLevel,
		); err != nil {
			return errors.WrapInternal("failed to update winner", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET losses = losses + 1, updated_at = NOW()
			WHERE id = $1`,
			entry.Loser(),
		); err != nil {
			return errors.WrapInternal("failed to update loser", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to record battle", "error", err)
		return nil, err
	}

	return &entry, nil
}

const summarySelect = `
	SELECT b.id, b.attacker_id, b.defender_id, b.winner_id, b.created_at,
	       a.name, d.name, w.name
	FROM battle_logs b
	JOIN profiles a ON a.id = b.attacker_id
	JOIN profiles d ON d.id = b.defender_id
	JOIN profiles w ON w.id = b.winner_id`

func (r *Repository) ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]Summary, error) {
	query := summarySelect + `
	WHERE b.attacker_id = $1 OR b.defender_id = $1
	ORDER BY b.created_at DESC, b.id ASC
	LIMIT $2`
	return r.querySummaries(ctx, "list_for_player", query, playerID, limit)
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	query := summarySelect + `
	ORDER BY b.created_at DESC, b.id ASC
	LIMIT $1`
	return r.querySummaries(ctx, "list_recent", query, limit)
}

func (r *Repository) querySummaries(ctx context.Context, operation, query string, args ...interface{}) ([]Summary, error) {
	logger := r.logger.With("component", "battle_repository", "operation", operation)
	logger.Debug("Querying battle logs")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query battle logs", "error", err)
		return nil, errors.WrapInternal("failed to query battle logs", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(
			&s.ID, &s.AttackerID, &s.DefenderID, &s.WinnerID, &s.CreatedAt,
			&s.AttackerName, &s.DefenderName, &s.WinnerName,
		); err != nil {
			logger.Error("Failed to scan battle log", "error", err)
			return nil, errors.WrapInternal("failed to scan battle log", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating battle logs", err)
	}
	return summaries, nil
}
