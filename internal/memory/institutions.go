package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"wizardgo/internal/institution"
	"wizardgo/internal/shared/errors"
)

type InstitutionStore struct {
	s *Store
}

func (ist *InstitutionStore) Create(_ context.Context, name, passwordHash string) (*institution.Institution, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	for _, rec := range ist.s.institutions {
		if rec.Name == name {
			return nil, errors.Conflictf("institution %q already exists", name)
		}
	}

	rec := &institutionRecord{
		Institution: institution.Institution{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: ist.s.now(),
		},
		passwordHash: passwordHash,
	}
	ist.s.institutions[rec.ID] = rec

	inst := rec.Institution
	return &inst, nil
}

func (ist *InstitutionStore) GetCredentials(_ context.Context, name string) (*institution.Credentials, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	for _, rec := range ist.s.institutions {
		if rec.Name == name {
			return &institution.Credentials{Institution: rec.Institution, PasswordHash: rec.passwordHash}, nil
		}
	}
	return nil, errors.NotFoundf("institution not found: %s", name)
}

func (ist *InstitutionStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	rec, ok := ist.s.institutions[id]
	if !ok {
		return errors.NotFoundf("institution not found: %s", id)
	}
	rec.passwordHash = passwordHash
	return nil
}

func (ist *InstitutionStore) CreateMap(_ context.Context, institutionID uuid.UUID, name string) (*institution.Map, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	owner, ok := ist.s.institutions[institutionID]
	if !ok {
		return nil, errors.NotFoundf("institution not found: %s", institutionID)
	}

	m := &institution.Map{
		ID:              uuid.New(),
		Name:            name,
		InstitutionID:   institutionID,
		InstitutionName: owner.Name,
		CreatedAt:       ist.s.now(),
	}
	ist.s.maps[m.ID] = m

	c := *m
	return &c, nil
}

func (ist *InstitutionStore) GetMap(_ context.Context, mapID uuid.UUID) (*institution.Map, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	m, ok := ist.s.maps[mapID]
	if !ok {
		return nil, errors.NotFoundf("map not found: %s", mapID)
	}
	c := *m
	return &c, nil
}

func (ist *InstitutionStore) ListMaps(_ context.Context, institutionID uuid.UUID) ([]institution.Map, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	return ist.sortedMaps(func(m *institution.Map) bool { return m.InstitutionID == institutionID }), nil
}

func (ist *InstitutionStore) ListInstitutions(_ context.Context) ([]institution.Institution, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	out := make([]institution.Institution, 0, len(ist.s.institutions))
	for _, rec := range ist.s.institutions {
		out = append(out, rec.Institution)
	}
	slices.SortFunc(out, func(a, b institution.Institution) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (ist *InstitutionStore) ListAllMaps(_ context.Context) ([]institution.Map, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	return ist.sortedMaps(func(*institution.Map) bool { return true }), nil
}

func (ist *InstitutionStore) sortedMaps(keep func(*institution.Map) bool) []institution.Map {
	var out []institution.Map
	for _, m := range ist.s.maps {
		if keep(m) {
			out = append(out, *m)
		}
	}
	slices.SortFunc(out, func(a, b institution.Map) int {
		if c := cmp.Compare(a.InstitutionName, b.InstitutionName); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (ist *InstitutionStore) FindProfileID(_ context.Context, name string) (uuid.UUID, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	p := ist.s.profileByName(name)
	if p == nil {
		return uuid.Nil, errors.NotFoundf("player not found: %s", name)
	}
	return p.ID, nil
}

func (ist *InstitutionStore) ProfileExists(_ context.Context, id uuid.UUID) (bool, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	_, ok := ist.s.profiles[id]
	return ok, nil
}

func (ist *InstitutionStore) GrantAccess(_ context.Context, profileID, mapID uuid.UUID) (bool, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	if _, ok := ist.s.profiles[profileID]; !ok {
		return false, errors.NotFound("player or map not found")
	}
	if _, ok := ist.s.maps[mapID]; !ok {
		return false, errors.NotFound("player or map not found")
	}

	key := accessKey{profileID: profileID, mapID: mapID}
	if _, exists := ist.s.access[key]; exists {
		return false, nil
	}
	ist.s.access[key] = ist.s.now()
	return true, nil
}

func (ist *InstitutionStore) RevokeAccess(_ context.Context, profileID, mapID uuid.UUID) error {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	delete(ist.s.access, accessKey{profileID: profileID, mapID: mapID})
	return nil
}

func (ist *InstitutionStore) ListStudents(_ context.Context, mapID uuid.UUID) ([]institution.Student, error) {
	ist.s.mu.Lock()
	defer ist.s.mu.Unlock()

	var out []institution.Student
	for key, grantedAt := range ist.s.access {
		if key.mapID != mapID {
			continue
		}
		p, ok := ist.s.profiles[key.profileID]
		if !ok {
			continue
		}
		out = append(out, institution.Student{
			ProfileID: p.ID,
			Name:      p.Name,
			Level:     p.Level,
			Wins:      p.Wins,
			Losses:    p.Losses,
			GrantedAt: grantedAt,
		})
	}
	slices.SortFunc(out, func(a, b institution.Student) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}
