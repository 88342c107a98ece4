package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"wizardgo/internal/battle"
	"wizardgo/internal/shared/errors"
)

type BattleStore struct {
	s *Store
}

func (bs *BattleStore) MissingProfiles(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := bs.s.profiles[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (bs *BattleStore) Record(_ context.Context, report battle.Report) (*battle.Log, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	if report.WinnerID != report.AttackerID && report.WinnerID != report.DefenderID {
		return nil, battle.ErrInvalidWinner
	}

	entry := battle.Log{
		ID:         uuid.New(),
		AttackerID: report.AttackerID,
		DefenderID: report.DefenderID,
		WinnerID:   report.WinnerID,
		CreatedAt:  bs.s.now(),
	}

	winner, ok := bs.s.profiles[entry.WinnerID]
	if !ok {
		return nil, errors.NotFound("battle participant not found")
	}
	loser, ok := bs.s.profiles[entry.Loser()]
	if !ok {
		return nil, errors.NotFound("battle participant not found")
	}

	winner.Wins++
	winner.Level = battle.LevelAfterWin(winner.Level, winner.Wins)
	loser.Losses++
	bs.s.battles = append(bs.s.battles, entry)

	return &entry, nil
}

func (bs *BattleStore) ListForPlayer(_ context.Context, playerID uuid.UUID, limit int) ([]battle.Summary, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	return bs.summaries(func(l battle.Log) bool {
		return l.AttackerID == playerID || l.DefenderID == playerID
	}, limit), nil
}

func (bs *BattleStore) ListRecent(_ context.Context, limit int) ([]battle.Summary, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	return bs.summaries(func(battle.Log) bool { return true }, limit), nil
}

func (bs *BattleStore) summaries(keep func(battle.Log) bool, limit int) []battle.Summary {
	var out []battle.Summary
	for _, l := range bs.s.battles {
		if !keep(l) {
			continue
		}
		out = append(out, battle.Summary{
			Log:          l,
			AttackerName: bs.name(l.AttackerID),
			DefenderName: bs.name(l.DefenderID),
			WinnerName:   bs.name(l.WinnerID),
		})
	}
	slices.SortStableFunc(out, func(a, b battle.Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (bs *BattleStore) name(id uuid.UUID) string {
	if p, ok := bs.s.profiles[id]; ok {
		return p.Name
	}
	return ""
}
