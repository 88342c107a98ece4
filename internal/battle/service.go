package battle

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"wizardgo/internal/shared/errors"
)

const (
	defaultPlayerLimit = 50
	maxPlayerLimit     = 200
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing battle service")
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Report records the outcome of a battle. Every participant must exist before
// the winner is checked, and a rejected report changes nothing.
func (s *Service) Report(ctx context.Context, report Report) (*Log, error) {
	logger := s.logger.With("component", "battle_service", "operation", "report",
		"attacker_id", report.AttackerID, "defender_id", report.DefenderID, "winner_id", report.WinnerID)

	if report.AttackerID == uuid.Nil || report.DefenderID == uuid.Nil || report.WinnerID == uuid.Nil {
		return nil, errors.Validation("attacker_id, defender_id and winner_id are required")
	}
	if report.AttackerID == report.DefenderID {
		return nil, errors.Validation("a wizard cannot battle themselves")
	}

	missing, err := s.store.MissingProfiles(ctx, distinct(report.AttackerID, report.DefenderID, report.WinnerID))
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.Debug("Battle references unknown profiles", "missing", missing)
		return nil, errors.NotFoundf("player not found: %s", missing[0])
	}

	if report.WinnerID != report.AttackerID && report.WinnerID != report.DefenderID {
		return nil, ErrInvalidWinner
	}

	entry, err := s.store.Record(ctx, report)
	if err != nil {
		return nil, err
	}

	logger.Info("Battle recorded", "battle_id", entry.ID)
	return entry, nil
}

func (s *Service) PlayerBattles(ctx context.Context, playerID uuid.UUID, limit int) ([]Summary, error) {
	limit = clamp(limit, defaultPlayerLimit, maxPlayerLimit)

	missing, err := s.store.MissingProfiles(ctx, []uuid.UUID{playerID})
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, errors.NotFoundf("player not found: %s", playerID)
	}

	battles, err := s.store.ListForPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	if battles == nil {
		battles = []Summary{}
	}
	return battles, nil
}

func (s *Service) RecentBattles(ctx context.Context, limit int) ([]Summary, error) {
	battles, err := s.store.ListRecent(ctx, clamp(limit, defaultRecentLimit, maxRecentLimit))
	if err != nil {
		return nil, err
	}
	if battles == nil {
		battles = []Summary{}
	}
	return battles, nil
}

func distinct(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func clamp(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
