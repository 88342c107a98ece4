package institution

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, name, passwordHash string) (*Institution, error)
	GetCredentials(ctx context.Context, name string) (*Credentials, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error

	CreateMap(ctx context.Context, institutionID uuid.UUID, name string) (*Map, error)
	GetMap(ctx context.Context, mapID uuid.UUID) (*Map, error)
	ListMaps(ctx context.Context, institutionID uuid.UUID) ([]Map, error)
	ListAllMaps(ctx context.Context) ([]Map, error)
	ListInstitutions(ctx context.Context) ([]Institution, error)

	// FindProfileID resolves a wizard name to its profile id.
	FindProfileID(ctx context.Context, name string) (uuid.UUID, error)
	ProfileExists(ctx context.Context, id uuid.UUID) (bool, error)

	// GrantAccess reports false when the grant already existed.
	GrantAccess(ctx context.Context, profileID, mapID uuid.UUID) (bool, error)
	RevokeAccess(ctx context.Context, profileID, mapID uuid.UUID) error
	ListStudents(ctx context.Context, mapID uuid.UUID) ([]Student, error)
}
