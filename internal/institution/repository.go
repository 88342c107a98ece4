package institution

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"wizardgo/internal/shared/database"
	"wizardgo/internal/shared/errors"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing institution repository")
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Create(ctx context.Context, name, passwordHash string) (*Institution, error) {
	logger := r.logger.With("component", "institution_repository", "operation", "create", "name", name)

	inst := Institution{Name: name}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO institutions (name, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		name, passwordHash,
	).Scan(&inst.ID, &inst.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.Conflictf("institution %q already exists", name)
		}
		logger.Error("Failed to create institution", "error", err)
		return nil, errors.WrapInternal("failed to create institution", err)
	}
	return &inst, nil
}

func (r *Repository) ListInstitutions(ctx context.Context) ([]Institution, error) {
	logger := r.logger.With("component", "institution_repository", "operation", "list_institutions")
	logger.Debug("Listing institutions")

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM institutions ORDER BY name ASC`)
	if err != nil {
		logger.Error("Failed to query institutions", "error", err)
		return nil, errors.WrapInternal("failed to query institutions", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var out []Institution
	for rows.Next() {
		var inst Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.CreatedAt); err != nil {
			logger.Error("Failed to scan institution", "error", err)
			return nil, errors.WrapInternal("failed to scan institution", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating institutions", err)
	}
	return out, nil
}

func (r *Repository) GetCredentials(ctx context.Context, name string) (*Credentials, error) {
	var c Credentials
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, password_hash FROM institutions WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.PasswordHash)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("institution not found: %s", name)
		}
		r.logger.Error("Failed to get institution", "component", "institution_repository", "name", name, "error", err)
		return nil, errors.WrapInternal("failed to get institution", err)
	}
	return &c, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE institutions SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return errors.WrapInternal("failed to update password hash", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFoundf("institution not found: %s", id)
	}
	return nil
}

func (r *Repository) CreateMap(ctx context.Context, institutionID uuid.UUID, name string) (*Map, error) {
	m := Map{Name: name, InstitutionID: institutionID}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO maps (name, institution_id) VALUES ($1, $2) RETURNING id, created_at`,
		name, institutionID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errors.NotFoundf("institution not found: %s", institutionID)
		}
		r.logger.Error("Failed to create map", "component", "institution_repository", "institution_id", institutionID, "error", err)
		return nil, errors.WrapInternal("failed to create map", err)
	}
	return &m, nil
}

const mapSelect = `
	SELECT m.id, m.name, m.institution_id, i.name, m.created_at
	FROM maps m
	JOIN institutions i ON i.id = m.institution_id`

func (r *Repository) GetMap(ctx context.Context, mapID uuid.UUID) (*Map, error) {
	var m Map
	err := r.db.QueryRowContext(ctx, mapSelect+` WHERE m.id = $1`, mapID).
		Scan(&m.ID, &m.Name, &m.InstitutionID, &m.InstitutionName, &m.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("map not found: %s", mapID)
		}
		r.logger.Error("Failed to get map", "component", "institution_repository", "map_id", mapID, "error", err)
		return nil, errors.WrapInternal("failed to get map", err)
	}
	return &m, nil
}

func (r *Repository) ListMaps(ctx context.Context, institutionID uuid.UUID) ([]Map, error) {
	return r.queryMaps(ctx, "list_maps", mapSelect+` WHERE m.institution_id = $1 ORDER BY m.name ASC, m.id ASC`, institutionID)
}

func (r *Repository) ListAllMaps(ctx context.Context) ([]Map, error) {
	return r.queryMaps(ctx, "list_all_maps", mapSelect+` ORDER BY i.name ASC, m.name ASC, m.id ASC`)
}

func (r *Repository) queryMaps(ctx context.Context, operation, query string, args ...interface{}) ([]Map, error) {
	logger := r.logger.With("component", "institution_repository", "operation", operation)
	logger.Debug("Querying maps")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query maps", "error", err)
		return nil, errors.WrapInternal("failed to query maps", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var maps []Map
	for rows.Next() {
		var m Map
		if err := rows.Scan(&m.ID, &m.Name, &m.InstitutionID, &m.InstitutionName, &m.CreatedAt); err != nil {
			logger.Error("Failed to scan map", "error", err)
			return nil, errors.WrapInternal("failed to scan map", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating maps", err)
	}
	return maps, nil
}

func (r *Repository) FindProfileID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT id FROM profiles WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, errors.NotFoundf("player not found: %s", name)
		}
		return uuid.Nil, errors.WrapInternal("failed to look up player", err)
	}
	return id, nil
}

func (r *Repository) ProfileExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, errors.WrapInternal("failed to check player", err)
	}
	return exists, nil
}

func (r *Repository) GrantAccess(ctx context.Context, profileID, mapID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO map_access (profile_id, map_id)
		VALUES ($1, $2)
		ON CONFLICT (profile_id, map_id) DO NOTHING`,
		profileID, mapID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, errors.NotFound("player or map not found")
		}
		r.logger.Error("Failed to grant map access", "component", "institution_repository",
			"profile_id", profileID, "map_id", mapID, "error", err)
		return false, errors.WrapInternal("failed to grant map access", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WrapInternal("failed to grant map access", err)
	}
	return n == 1, nil
}

func (r *Repository) RevokeAccess(ctx context.Context, profileID, mapID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM map_access WHERE profile_id = $1 AND map_id = $2`,
		profileID, mapID,
	); err != nil {
		r.logger.Error("Failed to revoke map access", "component", "institution_repository",
			"profile_id", profileID, "map_id", mapID, "error", err)
		return errors.WrapInternal("failed to revoke map access", err)
	}
	return nil
}

func (r *Repository) ListStudents(ctx context.Context, mapID uuid.UUID) ([]Student, error) {
	logger := r.logger.With("component", "institution_repository", "operation", "list_students", "map_id", mapID)

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.level, p.wins, p.losses, a.granted_at
		FROM map_access a
		JOIN profiles p ON p.id = a.profile_id
		WHERE a.map_id = $1
		ORDER BY p.name ASC`,
		mapID,
	)
	if err != nil {
		logger.Error("Failed to query students", "error", err)
		return nil, errors.WrapInternal("failed to query students", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ProfileID, &s.Name, &s.Level, &s.Wins, &s.Losses, &s.GrantedAt); err != nil {
			return nil, errors.WrapInternal("failed to scan student", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating students", err)
	}
	return students, nil
}
