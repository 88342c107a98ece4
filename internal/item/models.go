package item

import (
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

type Type string

const (
	TypePotion Type = "Potion"
	TypeGem    Type = "Gem"
	TypeChest  Type = "Chest"
	TypeWand   Type = "Wand"
	TypeScroll Type = "Scroll"
)

var validTypes = map[Type]bool{
	TypePotion: true,
	TypeGem:    true,
	TypeChest:  true,
	TypeWand:   true,
	TypeScroll: true,
}

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	return validTypes[t]
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", errors.Validationf("unknown item type %q (expected Potion, Gem, Chest, Wand or Scroll)", s)
	}
	return t, nil
}

type Item struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	Subtype   string     `json:"subtype"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	MapID     *uuid.UUID `json:"map_id"`
	Location  geo.Point  `json:"location"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i Item) IsClaimed() bool {
	return i.OwnerID != nil
}

// ExpiredAt reports whether the item's expiry is at or before now.
func (i Item) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Collectible reports whether the item is unclaimed and unexpired at now.
func (i Item) Collectible(now time.Time) bool {
	return !i.IsClaimed() && !i.ExpiredAt(now)
}

type NewItem struct {
	Type      Type
	Subtype   string
	MapID     *uuid.UUID
	Location  geo.Point
	ExpiresAt *time.Time
}

type NearbyItem struct {
	Item
	DistanceMeters float64 `json:"distance_meters"`
}

type NearbyQuery struct {
	MapID        uuid.UUID
	Center       geo.Point
	RadiusMeters float64
	Now          time.Time
}

type ClaimRequest struct {
	ItemID            uuid.UUID
	PlayerID          uuid.UUID
	Location          geo.Point
	MaxDistanceMeters float64
	Now               time.Time
}

// Effect is the profile change applied when an item is used.
type Effect struct {
	GemsAwarded int
}

type InstitutionItem struct {
	Item
	MapName string `json:"map_name"`
}

type MapStats struct {
	MapID         uuid.UUID `json:"map_id"`
	Total         int       `json:"total"`
	Available     int       `json:"available"`
	Collected     int       `json:"collected"`
	Expired       int       `json:"expired"`
	ActivePlayers int       `json:"active_players"`
}

type LeaderboardEntry struct {
	ProfileID      uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Level          int       `json:"level"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	ItemsCollected int       `json:"items_collected"`
}

type SpawnRequest struct {
	Type      string    `json:"type"`
	Subtype   string    `json:"subtype"`
	MapID     uuid.UUID `json:"map_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	// TTLHours overrides the configured expiration; zero or negative never expires.
	TTLHours *int `json:"expires_in_hours,omitempty"`
}

type UseResult struct {
	ItemID      uuid.UUID `json:"item_id"`
	Type        Type      `json:"type"`
	Effect      string    `json:"effect"`
	GemsAwarded int       `json:"gems_awarded"`
}

type SyncResult struct {
	PlayerID   uuid.UUID `json:"player_id"`
	Location   geo.Point `json:"location"`
	ItemsMoved int64     `json:"items_moved"`
}
