package item

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/geo"
)

// Store persists items. Implementations must make Claim a single conditional
// write and run Consume and SyncOwnerLocation atomically.
type Store interface {
	Create(ctx context.Context, item NewItem) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*Item, error)

	// DistanceTo returns the geodesic distance in meters from the item to p.
	DistanceTo(ctx context.Context, id uuid.UUID, p geo.Point) (float64, error)
	// FindNearby returns collectible items ordered by distance, then id.
	FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyItem, error)

	// Claim sets the owner and location only if the item is still unclaimed,
	// unexpired and within range. It reports false when no row changed.
	Claim(ctx context.Context, req ClaimRequest) (*Item, bool, error)
	// Consume deletes an owned item and applies its effect in one unit.
	Consume(ctx context.Context, id, ownerID uuid.UUID, effect Effect) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// SyncOwnerLocation moves the profile and every item it owns to p.
	SyncOwnerLocation(ctx context.Context, ownerID uuid.UUID, p geo.Point) (int64, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Item, error)
	ListForInstitution(ctx context.Context, institutionID uuid.UUID) ([]InstitutionItem, error)
	DeleteUnclaimedForInstitution(ctx context.Context, institutionID, id uuid.UUID) (bool, error)

	MapOwner(ctx context.Context, mapID uuid.UUID) (uuid.UUID, error)
	ProfileExists(ctx context.Context, id uuid.UUID) (bool, error)
	MapStats(ctx context.Context, mapID uuid.UUID, now time.Time) (*MapStats, error)
	Leaderboard(ctx context.Context, mapID uuid.UUID, limit int) ([]LeaderboardEntry, error)
}
