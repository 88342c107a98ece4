package profile

import (
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/geo"
)

// GuestID is the shared demo profile handed out by guest login.
var GuestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// GuestHome is where a reset guest and its starter items are placed.
var GuestHome = geo.NewPoint(33.9510, -83.3753)

var guestStarterItems = []StarterItem{
	{Type: "Potion", Subtype: "Stun Brew"},
	{Type: "Wand", Subtype: "Oak Branch"},
	{Type: "Gem", Subtype: "Focus Crystal"},
}

const (
	GuestName        = "Guest Wizard"
	guestDescription = "A traveling mage exploring the realm"
	newDescription   = "A wizard learning the magical arts"
	maxNameLength    = 64
)

type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Level       int        `json:"level"`
	Wins        int        `json:"wins"`
	Losses      int        `json:"losses"`
	Gems        int        `json:"gems"`
	Location    *geo.Point `json:"location"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewProfile describes a profile to insert. A nil ID lets the store assign one.
type NewProfile struct {
	ID          *uuid.UUID
	Name        string
	Description string
	Gems        int
	Location    *geo.Point
}

// StarterItem is an owned, non-expiring item handed out on reset.
type StarterItem struct {
	Type    string
	Subtype string
}

// ResetProfile restores a profile to level 1 with no wins or losses, Gems
// gems and Location, and replaces everything it owns with Starter.
type ResetProfile struct {
	ID       uuid.UUID
	Gems     int
	Location geo.Point
	Starter  []StarterItem
}
