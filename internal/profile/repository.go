package profile

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"wizardgo/internal/shared/database"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

const profileColumns = `id, name, description, level, wins, losses, gems,
	ST_Y(location::geometry), ST_X(location::geometry), created_at`

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing profile repository")
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	var lat, lng sql.NullFloat64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Level, &p.Wins, &p.Losses, &p.Gems, &lat, &lng, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Location = geo.FromNull(lat, lng)
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	logger := r.logger.With("component", "profile_repository", "operation", "get_by_id", "profile_id", id)
	logger.Debug("Getting profile by ID")

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("player not found: %s", id)
		}
		logger.Error("Database error getting profile", "error", err)
		return nil, errors.WrapInternal("failed to get profile", err)
	}

	return p, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*Profile, error) {
	logger := r.logger.With("component", "profile_repository", "operation", "get_by_name", "name", name)
	logger.Debug("Getting profile by name")

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE name = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("player not found: %s", name)
		}
		logger.Error("Database error getting profile", "error", err)
		return nil, errors.WrapInternal("failed to get profile", err)
	}

	return p, nil
}

func (r *Repository) Create(ctx context.Context, np NewProfile) (*Profile, error) {
	logger := r.logger.With("component", "profile_repository", "operation", "create", "name", np.Name)
	logger.Info("Creating new profile")

	id := uuid.New()
	if np.ID != nil {
		id = *np.ID
	}

	var lat, lng sql.NullFloat64
	if np.Location != nil {
		lat = sql.NullFloat64{Float64: np.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: np.Location.Lng, Valid: true}
	}

	query := `
		INSERT INTO profiles (id, name, description, gems, location)
		VALUES ($1, $2, $3, $4,
			CASE WHEN $5::float8 IS NULL THEN NULL
			     ELSE ST_SetSRID(ST_MakePoint($6::float8, $5::float8), 4326)::geography END)
		RETURNING ` + profileColumns

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id, np.Name, np.Description, np.Gems, lat, lng))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.Conflictf("player name %q is already taken", np.Name)
		}
		logger.Error("Failed to create profile", "error", err)
		return nil, errors.WrapInternal("failed to create profile", err)
	}

	logger.Info("Profile created successfully", "profile_id", p.ID)
	return p, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]Profile, error) {
	logger := r.logger.With("component", "profile_repository", "operation", "list", "limit", limit)
	logger.Debug("Listing profiles")

	query := `SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY wins DESC, level DESC, name ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.Error("Failed to query profiles", "error", err)
		return nil, errors.WrapInternal("failed to query profiles", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			logger.Error("Failed to scan profile row", "error", err)
			return nil, errors.WrapInternal("failed to scan profile", err)
		}
		profiles = append(profiles, *p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, errors.WrapInternal("error iterating profiles", err)
	}

	logger.Debug("Profiles retrieved successfully", "count", len(profiles))
	return profiles, nil
}

func (r *Repository) Reset(ctx context.Context, rp ResetProfile) (*Profile, error) {
	logger := r.logger.With("component", "profile_repository", "operation", "reset", "profile_id", rp.ID)
	logger.Info("Resetting profile")

	var reset *Profile
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			UPDATE profiles
			SET level = 1, wins = 0, losses = 0, gems = $2,
			    location = ST_SetSRID(ST_MakePoint($3::float8, $4::float8), 4326)::geography,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING ` + profileColumns

		p, err := scanProfile(tx.QueryRowContext(ctx, query, rp.ID, rp.Gems, rp.Location.Lng, rp.Location.Lat))
		if err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.NotFoundf("player not found: %s", rp.ID)
			}
			logger.Error("Failed to reset profile stats", "error", err)
			return errors.WrapInternal("failed to reset profile", err)
		}
		reset = p

		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE owner_id = $1`, rp.ID)
		if err != nil {
			logger.Error("Failed to clear inventory", "error", err)
			return errors.WrapInternal("failed to clear inventory", err)
		}
		cleared, _ := res.RowsAffected()

		for _, si := range rp.Starter {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO items (type, subtype, owner_id, location)
				VALUES ($1::item_type, $2, $3, ST_SetSRID(ST_MakePoint($4::float8, $5::float8), 4326)::geography)`,
				si.Type, si.Subtype, rp.ID, rp.Location.Lng, rp.Location.Lat)
			if err != nil {
				logger.Error("Failed to insert starter item", "type", si.Type, "error", err)
				return errors.WrapInternal("failed to insert starter item", err)
			}
		}

		logger.Info("Profile reset", "cleared_items", cleared, "starter_items", len(rp.Starter))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reset, nil
}
