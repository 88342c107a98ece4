package battle

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	// MissingProfiles returns the ids that resolve to no profile.
	MissingProfiles(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	// Record appends the log and updates both participants' counters atomically.
	Record(ctx context.Context, report Report) (*Log, error)
	ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]Summary, error)
	ListRecent(ctx context.Context, limit int) ([]Summary, error)
}
