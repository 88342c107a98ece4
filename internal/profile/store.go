package profile

import (
	"context"

	"github.com/google/uuid"
)

// Store persists profiles. Missing rows are reported as not_found errors and
// duplicate names as conflict errors.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	Create(ctx context.Context, p NewProfile) (*Profile, error)
	List(ctx context.Context, limit int) ([]Profile, error)
	Reset(ctx context.Context, r ResetProfile) (*Profile, error)
}
