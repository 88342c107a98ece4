package institution

import (
	"time"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxNameLength     = 128
)

type Institution struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is an institution together with its stored password hash.
type Credentials struct {
	Institution
	PasswordHash string
}

type Map struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	InstitutionID   uuid.UUID `json:"institution_id"`
	InstitutionName string    `json:"institution_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Student is a profile holding access to a map.
type Student struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	GrantedAt time.Time `json:"granted_at"`
}

type AccessStatus string

const (
	AccessGranted        AccessStatus = "granted"
	AccessAlreadyGranted AccessStatus = "already_granted"
	AccessRevoked        AccessStatus = "revoked"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type CreateMapRequest struct {
	Name string `json:"name"`
}

// GrantRequest names the student either by profile id or by wizard name.
type GrantRequest struct {
	ProfileID   *uuid.UUID `json:"profile_id,omitempty"`
	ProfileName string     `json:"profile_name,omitempty"`
}
