package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/config"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(config.AuthConfig{
		JWTSecret:       strings.Repeat("s", 32),
		TokenExpiration: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	return issuer
}

func TestNewIssuerRejectsShortSecret(t *testing.T) {
	if _, err := NewIssuer(config.AuthConfig{JWTSecret: "short"}); err == nil {
		t.Fatal("expected error for short secret")
	}
	if _, err := NewIssuer(config.AuthConfig{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	issuer := testIssuer(t)
	id := uuid.New()

	token, err := issuer.Generate(id, "Hogwarts")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.InstitutionID != id || claims.Name != "Hogwarts" {
		t.Errorf("claims = %+v, want institution %s Hogwarts", claims, id)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Generate(uuid.New(), "Durmstrang")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := issuer.Validate(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	other, err := NewIssuer(config.AuthConfig{JWTSecret: strings.Repeat("x", 32), TokenExpiration: time.Hour})
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	token, err := other.Generate(uuid.New(), "Beauxbatons")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := testIssuer(t).Validate(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}
