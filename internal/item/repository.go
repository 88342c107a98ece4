package item

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/database"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

// Coordinates are bound longitude first, as ST_MakePoint expects.
const pointSQL = `ST_SetSRID(ST_MakePoint($%d::float8, $%d::float8), 4326)::geography`

func pointArg(lngArg, latArg int) string {
	return fmt.Sprintf(pointSQL, lngArg, latArg)
}

func itemColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return p + "id, " + p + "type, " + p + "subtype, " + p + "owner_id, " + p + "map_id, " +
		"ST_Y(" + p + "location::geometry), ST_X(" + p + "location::geometry), " +
		p + "expires_at, " + p + "created_at"
}

// Repository is the PostGIS-backed Store.
type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing item repository")
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner, extra ...interface{}) (*Item, error) {
	var it Item
	var owner, mapID uuid.NullUUID
	var expiresAt sql.NullTime

	dest := []interface{}{&it.ID, &it.Type, &it.Subtype, &owner, &mapID, &it.Location.Lat, &it.Location.Lng, &expiresAt, &it.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if owner.Valid {
		it.OwnerID = &owner.UUID
	}
	if mapID.Valid {
		it.MapID = &mapID.UUID
	}
	if expiresAt.Valid {
		it.ExpiresAt = &expiresAt.Time
	}
	return &it, nil
}

func (r *Repository) Create(ctx context.Context, ni NewItem) (*Item, error) {
	logger := r.logger.With("component", "item_repository", "operation", "create", "type", ni.Type, "map_id", ni.MapID)
	logger.Debug("Creating item")

	query := `
		INSERT INTO items (id, type, subtype, map_id, location, expires_at)
		VALUES ($1, $2, $3, $4, ` + pointArg(5, 6) + `, $7)
		RETURNING ` + itemColumns("")

	var expiresAt sql.NullTime
	if ni.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *ni.ExpiresAt, Valid: true}
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, query,
		uuid.New(), ni.Type, ni.Subtype, nullUUID(ni.MapID), ni.Location.Lng, ni.Location.Lat, expiresAt))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errors.NotFound("map not found")
		}
		logger.Error("Failed to create item", "error", err)
		return nil, errors.WrapInternal("failed to create item", err)
	}

	return it, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `SELECT ` + itemColumns("") + ` FROM items WHERE id = $1`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("item not found: %s", id)
		}
		r.logger.Error("Database error getting item", "component", "item_repository", "item_id", id, "error", err)
		return nil, errors.WrapInternal("failed to get item", err)
	}
	return it, nil
}

func (r *Repository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*Item, error) {
	query := `SELECT ` + itemColumns("") + ` FROM items WHERE id = $1 AND owner_id = $2`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("item not found or not owned by player")
		}
		r.logger.Error("Database error getting owned item", "component", "item_repository", "item_id", id, "error", err)
		return nil, errors.WrapInternal("failed to get item", err)
	}
	return it, nil
}

func (r *Repository) DistanceTo(ctx context.Context, id uuid.UUID, p geo.Point) (float64, error) {
	query := `SELECT ST_Distance(location, ` + pointArg(2, 3) + `) FROM items WHERE id = $1`

	var distance float64
	err := r.db.QueryRowContext(ctx, query, id, p.Lng, p.Lat).Scan(&distance)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return 0, errors.NotFoundf("item not found: %s", id)
		}
		return 0, errors.WrapInternal("failed to compute item distance", err)
	}
	return distance, nil
}

func (r *Repository) FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyItem, error) {
	logger := r.logger.With(
		"component", "item_repository",
		"operation", "find_nearby",
		"map_id", q.MapID,
		"radius_meters", q.RadiusMeters,
	)
	logger.Debug("Searching for nearby items")

	query := `
		WITH player AS (SELECT ` + pointArg(2, 3) + ` AS point)
		SELECT ` + itemColumns("i") + `, ST_Distance(i.location, player.point) AS distance
		FROM items i, player
		WHERE i.map_id = $1
		  AND i.owner_id IS NULL
		  AND (i.expires_at IS NULL OR i.expires_at > $5)
		  AND ST_DWithin(i.location, player.point, $4)
		ORDER BY distance ASC, i.id ASC`

	rows, err := r.db.QueryContext(ctx, query, q.MapID, q.Center.Lng, q.Center.Lat, q.RadiusMeters, q.Now)
	if err != nil {
		logger.Error("Failed to query nearby items", "error", err)
		return nil, errors.WrapInternal("failed to query nearby items", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var items []NearbyItem
	for rows.Next() {
		var distance float64
		it, err := scanItem(rows, &distance)
		if err != nil {
			logger.Error("Failed to scan item row", "error", err)
			return nil, errors.WrapInternal("failed to scan item", err)
		}
		items = append(items, NearbyItem{Item: *it, DistanceMeters: distance})
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, errors.WrapInternal("error iterating nearby items", err)
	}

	logger.Debug("Nearby items found", "count", len(items))
	return items, nil
}

func (r *Repository) Claim(ctx context.Context, req ClaimRequest) (*Item, bool, error) {
	logger := r.logger.With("component", "item_repository", "operation", "claim", "item_id", req.ItemID, "player_id", req.PlayerID)

	// location in WHERE is the pre-update value: the range check is against
	// where the item lies, the SET moves it onto the player.
	query := `
		UPDATE items
		SET owner_id = $2, location = ` + pointArg(3, 4) + `
		WHERE id = $1
		  AND owner_id IS NULL
		  AND (expires_at IS NULL OR expires_at > $6)
		  AND ST_DWithin(location, ` + pointArg(3, 4) + `, $5)
		RETURNING ` + itemColumns("")

	it, err := scanItem(r.db.QueryRowContext(ctx, query,
		req.ItemID, req.PlayerID, req.Location.Lng, req.Location.Lat, req.MaxDistanceMeters, req.Now))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		if database.IsForeignKeyViolation(err) {
			return nil, false, errors.NotFoundf("player not found: %s", req.PlayerID)
		}
		logger.Error("Failed to claim item", "error", err)
		return nil, false, errors.WrapInternal("failed to claim item", err)
	}

	logger.Info("Item claimed")
	return it, true, nil
}

func (r *Repository) Consume(ctx context.Context, id, ownerID uuid.UUID, effect Effect) error {
	logger := r.logger.With("component", "item_repository", "operation", "consume", "item_id", id, "player_id", ownerID)

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			logger.Error("Failed to delete used item", "error", err)
			return errors.WrapInternal("failed to delete item", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.NotFound("item not found or not owned by player")
		}

		if effect.GemsAwarded == 0 {
			return nil
		}

		res, err = tx.ExecContext(ctx, `UPDATE profiles SET gems = gems + $2, updated_at = NOW() WHERE id = $1`, ownerID, effect.GemsAwarded)
		if err != nil {
			logger.Error("Failed to award gems", "error", err)
			return fmt.Errorf("%w: %v", ErrEffectFailed, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: profile %s missing", ErrEffectFailed, ownerID)
		}
		return nil
	})
}

func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	logger := r.logger.With("component", "item_repository", "operation", "delete_expired")

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM items
		WHERE owner_id IS NULL
		  AND expires_at IS NOT NULL
		  AND expires_at <= $1`, now)
	if err != nil {
		logger.Error("Failed to delete expired items", "error", err)
		return 0, errors.WrapInternal("failed to delete expired items", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WrapInternal("failed to count deleted items", err)
	}
	return deleted, nil
}

func (r *Repository) SyncOwnerLocation(ctx context.Context, ownerID uuid.UUID, p geo.Point) (int64, error) {
	logger := r.logger.With("component", "item_repository", "operation", "sync_owner_location", "player_id", ownerID)

	var moved int64
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE profiles SET location = `+pointArg(2, 3)+`, updated_at = NOW() WHERE id = $1`,
			ownerID, p.Lng, p.Lat)
		if err != nil {
			logger.Error("Failed to update profile location", "error", err)
			return errors.WrapInternal("failed to update profile location", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.NotFoundf("player not found: %s", ownerID)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE items SET location = `+pointArg(2, 3)+` WHERE owner_id = $1`,
			ownerID, p.Lng, p.Lat)
		if err != nil {
			logger.Error("Failed to move owned items", "error", err)
			return errors.WrapInternal("failed to move owned items", err)
		}
		moved, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Item, error) {
	query := `SELECT ` + itemColumns("") + ` FROM items WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`

	return r.queryItems(ctx, "list_by_owner", query, ownerID)
}

func (r *Repository) queryItems(ctx context.Context, operation, query string, args ...interface{}) ([]Item, error) {
	logger := r.logger.With("component", "item_repository", "operation", operation)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query items", "error", err)
		return nil, errors.WrapInternal("failed to query items", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			logger.Error("Failed to scan item row", "error", err)
			return nil, errors.WrapInternal("failed to scan item", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating items", err)
	}
	return items, nil
}

func (r *Repository) ListForInstitution(ctx context.Context, institutionID uuid.UUID) ([]InstitutionItem, error) {
	logger := r.logger.With("component", "item_repository", "operation", "list_for_institution", "institution_id", institutionID)

	query := `
		SELECT ` + itemColumns("i") + `, m.name
		FROM items i
		JOIN maps m ON i.map_id = m.id
		WHERE m.institution_id = $1 AND i.owner_id IS NULL
		ORDER BY m.name ASC, i.created_at DESC, i.id ASC`

	rows, err := r.db.QueryContext(ctx, query, institutionID)
	if err != nil {
		logger.Error("Failed to query institution items", "error", err)
		return nil, errors.WrapInternal("failed to query institution items", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var items []InstitutionItem
	for rows.Next() {
		var mapName string
		it, err := scanItem(rows, &mapName)
		if err != nil {
			logger.Error("Failed to scan item row", "error", err)
			return nil, errors.WrapInternal("failed to scan item", err)
		}
		items = append(items, InstitutionItem{Item: *it, MapName: mapName})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating institution items", err)
	}
	return items, nil
}

func (r *Repository) DeleteUnclaimedForInstitution(ctx context.Context, institutionID, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM items i
		USING maps m
		WHERE i.id = $2
		  AND i.map_id = m.id
		  AND m.institution_id = $1
		  AND i.owner_id IS NULL`, institutionID, id)
	if err != nil {
		r.logger.Error("Failed to delete institution item", "component", "item_repository", "item_id", id, "error", err)
		return false, errors.WrapInternal("failed to delete item", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WrapInternal("failed to count deleted items", err)
	}
	return n > 0, nil
}

func (r *Repository) MapOwner(ctx context.Context, mapID uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT institution_id FROM maps WHERE id = $1`, mapID).Scan(&owner)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, errors.NotFoundf("map not found: %s", mapID)
		}
		return uuid.Nil, errors.WrapInternal("failed to look up map", err)
	}
	return owner, nil
}

func (r *Repository) ProfileExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, errors.WrapInternal("failed to check profile", err)
	}
	return exists, nil
}

func (r *Repository) MapStats(ctx context.Context, mapID uuid.UUID, now time.Time) (*MapStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE owner_id IS NULL AND (expires_at IS NULL OR expires_at > $2)),
			COUNT(*) FILTER (WHERE owner_id IS NOT NULL),
			COUNT(*) FILTER (WHERE owner_id IS NULL AND expires_at <= $2),
			COUNT(DISTINCT owner_id)
		FROM items
		WHERE map_id = $1`

	stats := MapStats{MapID: mapID}
	err := r.db.QueryRowContext(ctx, query, mapID, now).Scan(
		&stats.Total,
		&stats.Available,
		&stats.Collected,
		&stats.Expired,
		&stats.ActivePlayers,
	)
	if err != nil {
		r.logger.Error("Failed to compute map stats", "component", "item_repository", "map_id", mapID, "error", err)
		return nil, errors.WrapInternal("failed to compute map stats", err)
	}
	return &stats, nil
}

func (r *Repository) Leaderboard(ctx context.Context, mapID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	logger := r.logger.With("component", "item_repository", "operation", "leaderboard", "map_id", mapID)

	query := `
		SELECT p.id, p.name, p.level, p.wins, p.losses, COUNT(i.id) AS items_collected
		FROM profiles p
		JOIN items i ON i.owner_id = p.id AND i.map_id = $1
		GROUP BY p.id, p.name, p.level, p.wins, p.losses
		ORDER BY items_collected DESC, p.wins DESC, p.level DESC, p.name ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, mapID, limit)
	if err != nil {
		logger.Error("Failed to query leaderboard", "error", err)
		return nil, errors.WrapInternal("failed to query leaderboard", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.ProfileID, &e.Name, &e.Level, &e.Wins, &e.Losses, &e.ItemsCollected); err != nil {
			logger.Error("Failed to scan leaderboard row", "error", err)
			return nil, errors.WrapInternal("failed to scan leaderboard entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating leaderboard", err)
	}
	return entries, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
