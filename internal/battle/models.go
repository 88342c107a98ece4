package battle

import (
	"time"

	"github.com/google/uuid"
)

// winsPerLevel is how many wins it takes to gain a level.
const winsPerLevel = 3

type Log struct {
	ID         uuid.UUID `json:"id"`
	AttackerID uuid.UUID `json:"attacker_id"`
	DefenderID uuid.UUID `json:"defender_id"`
	WinnerID   uuid.UUID `json:"winner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Loser returns the participant that is not the winner.
func (l Log) Loser() uuid.UUID {
	if l.WinnerID == l.AttackerID {
		return l.DefenderID
	}
	return l.AttackerID
}

type Report struct {
	AttackerID uuid.UUID `json:"attacker_id"`
	DefenderID uuid.UUID `json:"defender_id"`
	WinnerID   uuid.UUID `json:"winner_id"`
}

// Summary is a battle log with participant names resolved.
type Summary struct {
	Log
	AttackerName string `json:"attacker_name"`
	DefenderName string `json:"defender_name"`
	WinnerName   string `json:"winner_name"`
}

// LevelAfterWin returns the level a wizard reaches once their win count
// becomes wins.
func LevelAfterWin(level, wins int) int {
	if wins > 0 && wins%winsPerLevel == 0 {
		return level + 1
	}
	return level
}
