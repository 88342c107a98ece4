package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/item"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

type ItemStore struct {
	s *Store
}

func cloneItem(it *item.Item) item.Item {
	c := *it
	c.OwnerID = copyUUID(it.OwnerID)
	c.MapID = copyUUID(it.MapID)
	c.ExpiresAt = copyTime(it.ExpiresAt)
	return c
}

func (is *ItemStore) Create(_ context.Context, ni item.NewItem) (*item.Item, error) {
	if !ni.Type.IsValid() {
		return nil, errors.Validationf("unknown item type %q", ni.Type)
	}

	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	if ni.MapID != nil {
		if _, ok := is.s.maps[*ni.MapID]; !ok {
			return nil, errors.NotFound("map not found")
		}
	}

	it := &item.Item{
		ID:        uuid.New(),
		Type:      ni.Type,
		Subtype:   ni.Subtype,
		MapID:     copyUUID(ni.MapID),
		Location:  ni.Location,
		ExpiresAt: copyTime(ni.ExpiresAt),
		CreatedAt: is.s.now(),
	}
	is.s.items[it.ID] = it

	c := cloneItem(it)
	return &c, nil
}

func (is *ItemStore) GetByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	it, ok := is.s.items[id]
	if !ok {
		return nil, errors.NotFoundf("item not found: %s", id)
	}
	c := cloneItem(it)
	return &c, nil
}

func (is *ItemStore) GetOwned(_ context.Context, id, ownerID uuid.UUID) (*item.Item, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	it, ok := is.s.items[id]
	if !ok || it.OwnerID == nil || *it.OwnerID != ownerID {
		return nil, errors.NotFound("item not found or not owned by player")
	}
	c := cloneItem(it)
	return &c, nil
}

func (is *ItemStore) DistanceTo(_ context.Context, id uuid.UUID, p geo.Point) (float64, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	it, ok := is.s.items[id]
	if !ok {
		return 0, errors.NotFoundf("item not found: %s", id)
	}
	return geo.Distance(it.Location, p), nil
}

func (is *ItemStore) FindNearby(_ context.Context, q item.NearbyQuery) ([]item.NearbyItem, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	var out []item.NearbyItem
	for _, it := range is.s.items {
		if it.MapID == nil || *it.MapID != q.MapID || !it.Collectible(q.Now) {
			continue
		}
		d := geo.Distance(it.Location, q.Center)
		if d > q.RadiusMeters {
			continue
		}
		out = append(out, item.NearbyItem{Item: cloneItem(it), DistanceMeters: d})
	}
	slices.SortFunc(out, func(a, b item.NearbyItem) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Claim checks and writes under the store lock, so at most one claimant wins.
func (is *ItemStore) Claim(_ context.Context, req item.ClaimRequest) (*item.Item, bool, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	if _, ok := is.s.profiles[req.PlayerID]; !ok {
		return nil, false, errors.NotFoundf("player not found: %s", req.PlayerID)
	}

	it, ok := is.s.items[req.ItemID]
	if !ok || !it.Collectible(req.Now) || geo.Distance(it.Location, req.Location) > req.MaxDistanceMeters {
		return nil, false, nil
	}

	owner := req.PlayerID
	it.OwnerID = &owner
	it.Location = req.Location

	c := cloneItem(it)
	return &c, true, nil
}

func (is *ItemStore) Consume(_ context.Context, id, ownerID uuid.UUID, effect item.Effect) error {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	it, ok := is.s.items[id]
	if !ok || it.OwnerID == nil || *it.OwnerID != ownerID {
		return errors.NotFound("item not found or not owned by player")
	}

	p, ok := is.s.profiles[ownerID]
	if !ok || p.Gems+effect.GemsAwarded < 0 {
		return item.ErrEffectFailed
	}

	p.Gems += effect.GemsAwarded
	delete(is.s.items, id)
	return nil
}

func (is *ItemStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	var deleted int64
	for id, it := range is.s.items {
		if !it.IsClaimed() && it.ExpiredAt(now) {
			delete(is.s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (is *ItemStore) SyncOwnerLocation(_ context.Context, ownerID uuid.UUID, p geo.Point) (int64, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	prof, ok := is.s.profiles[ownerID]
	if !ok {
		return 0, errors.NotFoundf("player not found: %s", ownerID)
	}
	loc := p
	prof.Location = &loc

	var moved int64
	for _, it := range is.s.items {
		if it.OwnerID != nil && *it.OwnerID == ownerID {
			it.Location = p
			moved++
		}
	}
	return moved, nil
}

func (is *ItemStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]item.Item, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	var out []item.Item
	for _, it := range is.s.items {
		if it.OwnerID != nil && *it.OwnerID == ownerID {
			out = append(out, cloneItem(it))
		}
	}
	slices.SortFunc(out, func(a, b item.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (is *ItemStore) ListForInstitution(_ context.Context, institutionID uuid.UUID) ([]item.InstitutionItem, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	var out []item.InstitutionItem
	for _, it := range is.s.items {
		if it.MapID == nil || it.IsClaimed() {
			continue
		}
		m, ok := is.s.maps[*it.MapID]
		if !ok || m.InstitutionID != institutionID {
			continue
		}
		out = append(out, item.InstitutionItem{Item: cloneItem(it), MapName: m.Name})
	}
	slices.SortFunc(out, func(a, b item.InstitutionItem) int {
		if c := cmp.Compare(a.MapName, b.MapName); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (is *ItemStore) DeleteUnclaimedForInstitution(_ context.Context, institutionID, id uuid.UUID) (bool, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	it, ok := is.s.items[id]
	if !ok || it.IsClaimed() || it.MapID == nil {
		return false, nil
	}
	m, ok := is.s.maps[*it.MapID]
	if !ok || m.InstitutionID != institutionID {
		return false, nil
	}
	delete(is.s.items, id)
	return true, nil
}

func (is *ItemStore) MapOwner(_ context.Context, mapID uuid.UUID) (uuid.UUID, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	m, ok := is.s.maps[mapID]
	if !ok {
		return uuid.Nil, errors.NotFoundf("map not found: %s", mapID)
	}
	return m.InstitutionID, nil
}

func (is *ItemStore) ProfileExists(_ context.Context, id uuid.UUID) (bool, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	_, ok := is.s.profiles[id]
	return ok, nil
}

func (is *ItemStore) MapStats(_ context.Context, mapID uuid.UUID, now time.Time) (*item.MapStats, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	stats := item.MapStats{MapID: mapID}
	owners := make(map[uuid.UUID]bool)
	for _, it := range is.s.items {
		if it.MapID == nil || *it.MapID != mapID {
			continue
		}
		stats.Total++
		switch {
		case it.IsClaimed():
			stats.Collected++
			owners[*it.OwnerID] = true
		case it.ExpiredAt(now):
			stats.Expired++
		default:
			stats.Available++
		}
	}
	stats.ActivePlayers = len(owners)
	return &stats, nil
}

func (is *ItemStore) Leaderboard(_ context.Context, mapID uuid.UUID, limit int) ([]item.LeaderboardEntry, error) {
	is.s.mu.Lock()
	defer is.s.mu.Unlock()

	counts := make(map[uuid.UUID]int)
	for _, it := range is.s.items {
		if it.MapID != nil && *it.MapID == mapID && it.OwnerID != nil {
			counts[*it.OwnerID]++
		}
	}

	out := make([]item.LeaderboardEntry, 0, len(counts))
	for id, n := range counts {
		p, ok := is.s.profiles[id]
		if !ok {
			continue
		}
		out = append(out, item.LeaderboardEntry{
			ProfileID:      p.ID,
			Name:           p.Name,
			Level:          p.Level,
			Wins:           p.Wins,
			Losses:         p.Losses,
			ItemsCollected: n,
		})
	}
	slices.SortFunc(out, func(a, b item.LeaderboardEntry) int {
		if c := cmp.Compare(b.ItemsCollected, a.ItemsCollected); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
