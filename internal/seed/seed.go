// Package seed loads demo institutions, maps, items and wizards from a YAML
// fixture through the regular services.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/errors"
)

type Fixture struct {
	Wizards      []string             `yaml:"wizards"`
	Institutions []InstitutionFixture `yaml:"institutions"`
}

type InstitutionFixture struct {
	Name     string       `yaml:"name"`
	Password string       `yaml:"password"`
	Maps     []MapFixture `yaml:"maps"`
}

type MapFixture struct {
	Name     string        `yaml:"name"`
	Students []string      `yaml:"students"`
	Items    []ItemFixture `yaml:"items"`
}

type ItemFixture struct {
	Type      string  `yaml:"type"`
	Subtype   string  `yaml:"subtype"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	// ExpiresInHours nil uses the configured default; zero never expires.
	ExpiresInHours *int `yaml:"expires_in_hours"`
}

// Summary counts wizards ensured plus the institutions, maps, items and
// grants a run actually created.
type Summary struct {
	Wizards      int `json:"wizards"`
	Institutions int `json:"institutions"`
	Maps         int `json:"maps"`
	Items        int `json:"items"`
	Grants       int `json:"grants"`
}

func LoadFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	profiles     *profile.Service
	items        *item.Service
	institutions *institution.Service
	logger       *slog.Logger
}

func NewSeeder(profiles *profile.Service, items *item.Service, institutions *institution.Service, logger *slog.Logger) *Seeder {
	return &Seeder{
		profiles:     profiles,
		items:        items,
		institutions: institutions,
		logger:       logger.With("component", "seeder"),
	}
}

// Apply creates whatever the fixture names that does not exist yet. Items are
// only spawned on maps created by this run, so re-running is safe.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Summary, error) {
	var sum Summary

	for _, name := range f.Wizards {
		if _, err := s.profiles.Login(ctx, name); err != nil {
			return nil, fmt.Errorf("wizard %q: %w", name, err)
		}
		sum.Wizards++
	}

	for _, inf := range f.Institutions {
		inst, created, err := s.ensureInstitution(ctx, inf)
		if err != nil {
			return nil, fmt.Errorf("institution %q: %w", inf.Name, err)
		}
		if created {
			sum.Institutions++
		}

		existing, err := s.institutions.ListMaps(ctx, inst.ID)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]institution.Map, len(existing))
		for _, m := range existing {
			byName[m.Name] = m
		}

		for _, mf := range inf.Maps {
			m, ok := byName[mf.Name]
			if !ok {
				createdMap, err := s.institutions.CreateMap(ctx, inst.ID, institution.CreateMapRequest{Name: mf.Name})
				if err != nil {
					return nil, fmt.Errorf("map %q: %w", mf.Name, err)
				}
				m = *createdMap
				sum.Maps++

				for _, itf := range mf.Items {
					if _, err := s.items.SpawnForInstitution(ctx, inst.ID, item.SpawnRequest{
						Type:      itf.Type,
						Subtype:   itf.Subtype,
						MapID:     m.ID,
						Latitude:  itf.Latitude,
						Longitude: itf.Longitude,
						TTLHours:  itf.ExpiresInHours,
					}); err != nil {
						return nil, fmt.Errorf("item %s/%s on map %q: %w", itf.Type, itf.Subtype, mf.Name, err)
					}
					sum.Items++
				}
			}

			for _, student := range mf.Students {
				status, err := s.institutions.GrantAccess(ctx, inst.ID, m.ID, institution.GrantRequest{ProfileName: student})
				if err != nil {
					return nil, fmt.Errorf("grant %q on map %q: %w", student, mf.Name, err)
				}
				if status == institution.AccessGranted {
					sum.Grants++
				}
			}
		}
	}

	s.logger.Info("Fixture applied",
		"wizards", sum.Wizards,
		"institutions", sum.Institutions,
		"maps", sum.Maps,
		"items", sum.Items,
		"grants", sum.Grants,
	)
	return &sum, nil
}

func (s *Seeder) ensureInstitution(ctx context.Context, inf InstitutionFixture) (*institution.Institution, bool, error) {
	inst, err := s.institutions.Register(ctx, institution.RegisterRequest{Name: inf.Name, Password: inf.Password})
	if err == nil {
		return inst, true, nil
	}
	if !errors.Is(err, errors.ErrorTypeConflict) {
		return nil, false, err
	}

	inst, err = s.institutions.Login(ctx, institution.LoginRequest{Name: inf.Name, Password: inf.Password})
	if err != nil {
		return nil, false, err
	}
	return inst, false, nil
}
