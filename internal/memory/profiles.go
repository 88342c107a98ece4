package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"wizardgo/internal/item"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

type ProfileStore struct {
	s *Store
}

func cloneProfile(p *profile.Profile) *profile.Profile {
	c := *p
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	return &c
}

func (ps *ProfileStore) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p, ok := ps.s.profiles[id]
	if !ok {
		return nil, errors.NotFoundf("player not found: %s", id)
	}
	return cloneProfile(p), nil
}

func (ps *ProfileStore) GetByName(_ context.Context, name string) (*profile.Profile, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p := ps.s.profileByName(name)
	if p == nil {
		return nil, errors.NotFoundf("player not found: %s", name)
	}
	return cloneProfile(p), nil
}

func (ps *ProfileStore) Create(_ context.Context, np profile.NewProfile) (*profile.Profile, error) {
	if strings.TrimSpace(np.Name) == "" {
		return nil, errors.Validation("wizard name is required")
	}
	if np.Gems < 0 {
		return nil, errors.Validation("gems cannot be negative")
	}

	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	id := uuid.New()
	if np.ID != nil {
		id = *np.ID
	}
	if _, exists := ps.s.profiles[id]; exists {
		return nil, errors.Conflictf("player %s already exists", id)
	}
	if ps.s.profileByName(np.Name) != nil {
		return nil, errors.Conflictf("player name %q is already taken", np.Name)
	}

	p := &profile.Profile{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		Level:       1,
		Gems:        np.Gems,
		CreatedAt:   ps.s.now(),
	}
	if np.Location != nil {
		loc := geo.NewPoint(np.Location.Lat, np.Location.Lng)
		p.Location = &loc
	}
	ps.s.profiles[id] = p
	return cloneProfile(p), nil
}

func (ps *ProfileStore) List(_ context.Context, limit int) ([]profile.Profile, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	out := make([]profile.Profile, 0, len(ps.s.profiles))
	for _, p := range ps.s.profiles {
		out = append(out, *cloneProfile(p))
	}
	slices.SortFunc(out, func(a, b profile.Profile) int {
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

// Reset validates every starter item before touching any record, so a bad
// starter list leaves the profile and its inventory unchanged.
func (ps *ProfileStore) Reset(_ context.Context, rp profile.ResetProfile) (*profile.Profile, error) {
	if rp.Gems < 0 {
		return nil, errors.Validation("gems cannot be negative")
	}
	for _, si := range rp.Starter {
		if !item.Type(si.Type).IsValid() {
			return nil, errors.Validationf("unknown item type %q", si.Type)
		}
	}

	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p, ok := ps.s.profiles[rp.ID]
	if !ok {
		return nil, errors.NotFoundf("player not found: %s", rp.ID)
	}
	home := geo.NewPoint(rp.Location.Lat, rp.Location.Lng)
	p.Level, p.Wins, p.Losses, p.Gems = 1, 0, 0, rp.Gems
	p.Location = &home

	for id, it := range ps.s.items {
		if it.OwnerID != nil && *it.OwnerID == rp.ID {
			delete(ps.s.items, id)
		}
	}
	now := ps.s.now()
	for _, si := range rp.Starter {
		owner := rp.ID
		it := &item.Item{
			ID:        uuid.New(),
			Type:      item.Type(si.Type),
			Subtype:   si.Subtype,
			OwnerID:   &owner,
			Location:  home,
			CreatedAt: now,
		}
		ps.s.items[it.ID] = it
	}
	return cloneProfile(p), nil
}
