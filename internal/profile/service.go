package profile

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"wizardgo/internal/shared/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	store        Store
	startingGems int
	logger       *slog.Logger
}

func NewService(store Store, startingGems int, logger *slog.Logger) *Service {
	logger.Debug("Initializing profile service")

	return &Service{
		store:        store,
		startingGems: startingGems,
		logger:       logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListProfiles(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.List(ctx, limit)
}

// Login returns the wizard with the given name, creating it on first use.
func (s *Service) Login(ctx context.Context, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("wizard name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, errors.Validationf("wizard name must be at most %d characters", maxNameLength)
	}

	logger := s.logger.With("component", "profile_service", "operation", "login", "name", name)

	existing, err := s.store.GetByName(ctx, name)
	if err == nil {
		logger.Debug("Found existing wizard", "profile_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		return nil, err
	}

	created, err := s.store.Create(ctx, NewProfile{
		Name:        name,
		Description: newDescription,
		Gems:        s.startingGems,
	})
	if errors.Is(err, errors.ErrorTypeConflict) {
		// Lost a race with a concurrent login for the same name.
		return s.store.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Created new wizard", "profile_id", created.ID)
	return created, nil
}

// GuestLogin returns the shared guest profile, creating it if needed.
func (s *Service) GuestLogin(ctx context.Context) (*Profile, error) {
	guest, err := s.store.GetByID(ctx, GuestID)
	if err == nil {
		return guest, nil
	}
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		return nil, err
	}

	id := GuestID
	guest, err = s.store.Create(ctx, NewProfile{
		ID:          &id,
		Name:        GuestName,
		Description: guestDescription,
		Gems:        s.startingGems,
	})
	if errors.Is(err, errors.ErrorTypeConflict) {
		return s.store.GetByID(ctx, GuestID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created guest profile", "component", "profile_service", "profile_id", guest.ID)
	return guest, nil
}

// ResetGuest restores the guest to starting stats at GuestHome and replaces
// its inventory with the starter items. Battle history is kept.
func (s *Service) ResetGuest(ctx context.Context) (*Profile, error) {
	if _, err := s.GuestLogin(ctx); err != nil {
		return nil, err
	}

	guest, err := s.store.Reset(ctx, ResetProfile{
		ID:       GuestID,
		Gems:     s.startingGems,
		Location: GuestHome,
		Starter:  slices.Clone(guestStarterItems),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reset guest profile",
		"component", "profile_service",
		"operation", "reset_guest",
		"starter_items", len(guestStarterItems),
	)
	return guest, nil
}
