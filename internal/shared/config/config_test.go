package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Game.MaxCollectionDistanceMeters != 10.0 {
		t.Fatalf("expected default collection distance 10, got %v", cfg.Game.MaxCollectionDistanceMeters)
	}
	if cfg.Game.ItemExpirationHours != 24 {
		t.Fatalf("expected default expiration 24h, got %d", cfg.Game.ItemExpirationHours)
	}
	if cfg.Game.DefaultMapRadiusMeters != 100.0 {
		t.Fatalf("expected default radius 100, got %v", cfg.Game.DefaultMapRadiusMeters)
	}
	if cfg.Game.CleanupInterval != time.Minute {
		t.Fatalf("expected cleanup every minute, got %v", cfg.Game.CleanupInterval)
	}
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("MAX_COLLECTION_DISTANCE_METERS", "25.5")
	t.Setenv("ITEM_EXPIRATION_HOURS", "0")
	t.Setenv("DEFAULT_MAP_RADIUS_METERS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Game.MaxCollectionDistanceMeters != 25.5 {
		t.Fatalf("expected 25.5, got %v", cfg.Game.MaxCollectionDistanceMeters)
	}
	if cfg.Game.ItemExpirationHours != 0 {
		t.Fatalf("expected 0, got %d", cfg.Game.ItemExpirationHours)
	}
	if cfg.Game.DefaultMapRadiusMeters != 250 {
		t.Fatalf("expected 250, got %v", cfg.Game.DefaultMapRadiusMeters)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, _ := Load()
		cfg.Auth.JWTSecret = strings.Repeat("s", 32)
		cfg.Storage.Driver = StorageDriverMemory
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "STORAGE_DRIVER"},
		{name: "zero distance", mutate: func(c *Config) { c.Game.MaxCollectionDistanceMeters = 0 }, wantErr: "MAX_COLLECTION_DISTANCE_METERS"},
		{name: "radius above max", mutate: func(c *Config) { c.Game.DefaultMapRadiusMeters = c.Game.MaxMapRadiusMeters + 1 }, wantErr: "DEFAULT_MAP_RADIUS_METERS"},
		{name: "expiration overflow", mutate: func(c *Config) { c.Game.ItemExpirationHours = MaxItemExpirationHours + 1 }, wantErr: "ITEM_EXPIRATION_HOURS"},
		{name: "expiration at cap", mutate: func(c *Config) { c.Game.ItemExpirationHours = MaxItemExpirationHours }},
		{name: "inverted gem range", mutate: func(c *Config) { c.Game.ChestMinGems = 20 }, wantErr: "CHEST_MIN_GEMS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
