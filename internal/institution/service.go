package institution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wizardgo/internal/shared/errors"
)

type Option func(*Service)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

type Service struct {
	store      Store
	bcryptCost int
	logger     *slog.Logger
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	logger.Debug("Initializing institution service")

	s := &Service{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Institution, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName("institution name", name); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, errors.Validationf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	inst, err := s.store.Create(ctx, name, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Institution registered", "component", "institution_service", "institution_id", inst.ID, "name", inst.Name)
	return inst, nil
}

// Login checks the institution's password. Unknown names and wrong passwords
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Institution, error) {
	logger := s.logger.With("component", "institution_service", "operation", "login", "name", req.Name)

	creds, err := s.store.GetCredentials(ctx, strings.TrimSpace(req.Name))
	if errors.Is(err, errors.ErrorTypeNotFound) {
		logger.Debug("Login for unknown institution")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, legacy := checkPassword(creds.PasswordHash, req.Password)
	if !ok {
		logger.Debug("Institution password mismatch")
		return nil, ErrInvalidCredentials
	}

	if legacy {
		if err := s.upgradeHash(ctx, creds.ID, req.Password); err != nil {
			logger.Warn("Failed to upgrade legacy password hash", "error", err)
		} else {
			logger.Info("Upgraded legacy password hash", "institution_id", creds.ID)
		}
	}

	logger.Info("Institution logged in", "institution_id", creds.ID)
	return &creds.Institution, nil
}

func (s *Service) upgradeHash(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, id, hash)
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", errors.WrapInternal("failed to hash password", err)
	}
	return string(hash), nil
}

func (s *Service) CreateMap(ctx context.Context, institutionID uuid.UUID, req CreateMapRequest) (*Map, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName("map name", name); err != nil {
		return nil, err
	}

	m, err := s.store.CreateMap(ctx, institutionID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Map created", "component", "institution_service", "institution_id", institutionID, "map_id", m.ID, "name", m.Name)
	return m, nil
}

func (s *Service) ListMaps(ctx context.Context, institutionID uuid.UUID) ([]Map, error) {
	maps, err := s.store.ListMaps(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if maps == nil {
		maps = []Map{}
	}
	return maps, nil
}

// ListInstitutions returns every institution ordered by name.
func (s *Service) ListInstitutions(ctx context.Context) ([]Institution, error) {
	institutions, err := s.store.ListInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	if institutions == nil {
		institutions = []Institution{}
	}
	return institutions, nil
}

func (s *Service) ListAllMaps(ctx context.Context) ([]Map, error) {
	maps, err := s.store.ListAllMaps(ctx)
	if err != nil {
		return nil, err
	}
	if maps == nil {
		maps = []Map{}
	}
	return maps, nil
}

func (s *Service) GetMap(ctx context.Context, mapID uuid.UUID) (*Map, error) {
	return s.store.GetMap(ctx, mapID)
}

// ownedMap loads mapID and hides maps belonging to other institutions.
func (s *Service) ownedMap(ctx context.Context, institutionID, mapID uuid.UUID) (*Map, error) {
	m, err := s.store.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if m.InstitutionID != institutionID {
		return nil, errors.NotFoundf("map not found: %s", mapID)
	}
	return m, nil
}

func (s *Service) ListMapStudents(ctx context.Context, institutionID, mapID uuid.UUID) ([]Student, error) {
	if _, err := s.ownedMap(ctx, institutionID, mapID); err != nil {
		return nil, err
	}

	students, err := s.store.ListStudents(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []Student{}
	}
	return students, nil
}

// GrantAccess adds the student to the map's allow-list.
func (s *Service) GrantAccess(ctx context.Context, institutionID, mapID uuid.UUID, req GrantRequest) (AccessStatus, error) {
	logger := s.logger.With("component", "institution_service", "operation", "grant_access",
		"institution_id", institutionID, "map_id", mapID)

	if _, err := s.ownedMap(ctx, institutionID, mapID); err != nil {
		return "", err
	}

	profileID, err := s.resolveProfile(ctx, req)
	if err != nil {
		return "", err
	}

	inserted, err := s.store.GrantAccess(ctx, profileID, mapID)
	if err != nil {
		return "", err
	}
	if !inserted {
		logger.Debug("Map access already granted", "profile_id", profileID)
		return AccessAlreadyGranted, nil
	}

	logger.Info("Map access granted", "profile_id", profileID)
	return AccessGranted, nil
}

// RevokeAccess removes the student from the map's allow-list. Revoking a
// grant that does not exist still succeeds.
func (s *Service) RevokeAccess(ctx context.Context, institutionID, mapID, profileID uuid.UUID) (AccessStatus, error) {
	if _, err := s.ownedMap(ctx, institutionID, mapID); err != nil {
		return "", err
	}

	if err := s.store.RevokeAccess(ctx, profileID, mapID); err != nil {
		return "", err
	}

	s.logger.Info("Map access revoked", "component", "institution_service",
		"institution_id", institutionID, "map_id", mapID, "profile_id", profileID)
	return AccessRevoked, nil
}

func (s *Service) resolveProfile(ctx context.Context, req GrantRequest) (uuid.UUID, error) {
	if req.ProfileID != nil {
		exists, err := s.store.ProfileExists(ctx, *req.ProfileID)
		if err != nil {
			return uuid.Nil, err
		}
		if !exists {
			return uuid.Nil, errors.NotFoundf("player not found: %s", *req.ProfileID)
		}
		return *req.ProfileID, nil
	}

	name := strings.TrimSpace(req.ProfileName)
	if name == "" {
		return uuid.Nil, errors.Validation("profile_id or profile_name is required")
	}
	return s.store.FindProfileID(ctx, name)
}

func validateName(field, name string) error {
	if name == "" {
		return errors.Validation(fmt.Sprintf("%s is required", field))
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.Validationf("%s must be at most %d characters", field, maxNameLength)
	}
	return nil
}
