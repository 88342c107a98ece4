package institution

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckPassword(t *testing.T) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	legacy := legacyDigest("secret123")

	tests := []struct {
		name       string
		hash       string
		password   string
		wantOK     bool
		wantLegacy bool
	}{
		{"bcrypt match", string(bcryptHash), "secret123", true, false},
		{"bcrypt mismatch", string(bcryptHash), "secret124", false, false},
		{"legacy match", legacy, "secret123", true, true},
		{"legacy uppercase digest", strings.ToUpper(legacy), "secret123", true, true},
		{"legacy mismatch", legacy, "nope", false, true},
		{"empty hash", "", "secret123", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, isLegacy := checkPassword(tt.hash, tt.password)
			if ok != tt.wantOK || isLegacy != tt.wantLegacy {
				t.Errorf("checkPassword() = (%v, %v), want (%v, %v)", ok, isLegacy, tt.wantOK, tt.wantLegacy)
			}
		})
	}
}

func TestLegacyDigest(t *testing.T) {
	// sha256("password")
	want := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got := legacyDigest("password"); got != want {
		t.Errorf("legacyDigest() = %s, want %s", got, want)
	}
}
