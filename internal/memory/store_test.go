package memory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/item"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

func TestProfilesEnforceUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	p, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Level != 1 {
		t.Errorf("Level = %d, want 1", p.Level)
	}

	if _, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice"}); !errors.Is(err, errors.ErrorTypeConflict) {
		t.Errorf("duplicate name error = %v, want conflict", err)
	}
	if _, err := s.Profiles().Create(ctx, profile.NewProfile{ID: &p.ID, Name: "Other"}); !errors.Is(err, errors.ErrorTypeConflict) {
		t.Errorf("duplicate id error = %v, want conflict", err)
	}
	if _, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Bob", Gems: -1}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("negative gems error = %v, want validation", err)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	p, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice", Location: &geo.Point{Lat: 1, Lng: 2}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	p.Location.Lat = 50
	p.Gems = 999

	stored, err := s.Profiles().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Location.Lat != 1 || stored.Gems != 0 {
		t.Errorf("mutating a returned profile leaked into the store: %+v", stored)
	}
}

func TestItemCreateRequiresKnownMap(t *testing.T) {
	s := New()
	mapID := uuid.New()

	_, err := s.Items().Create(context.Background(), item.NewItem{Type: item.TypeGem, MapID: &mapID})
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("Create() error = %v, want not_found", err)
	}
}

func TestClaimIsConditional(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	alice, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	spot := geo.NewPoint(10, 10)
	it, err := s.Items().Create(ctx, item.NewItem{Type: item.TypeWand, Location: spot})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := item.ClaimRequest{ItemID: it.ID, PlayerID: alice.ID, Location: geo.NewPoint(11, 10), MaxDistanceMeters: 10, Now: now}
	if _, ok, err := s.Items().Claim(ctx, req); err != nil || ok {
		t.Fatalf("far Claim() = %v, %v; want no match", ok, err)
	}

	req.Location = spot
	claimed, ok, err := s.Items().Claim(ctx, req)
	if err != nil || !ok {
		t.Fatalf("Claim() = %v, %v; want success", ok, err)
	}
	if claimed.OwnerID == nil || *claimed.OwnerID != alice.ID {
		t.Errorf("OwnerID = %v", claimed.OwnerID)
	}

	if _, ok, err := s.Items().Claim(ctx, req); err != nil || ok {
		t.Errorf("second Claim() = %v, %v; want no match", ok, err)
	}

	req.PlayerID = uuid.New()
	if _, _, err := s.Items().Claim(ctx, req); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown player Claim() error = %v, want not_found", err)
	}
}

func TestConsumeRejectsNegativeGems(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice", Gems: 3})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	it, err := s.Items().Create(ctx, item.NewItem{Type: item.TypePotion})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, ok, err := s.Items().Claim(ctx, item.ClaimRequest{ItemID: it.ID, PlayerID: alice.ID, MaxDistanceMeters: 10, Now: time.Now()}); err != nil || !ok {
		t.Fatalf("Claim() = %v, %v", ok, err)
	}

	err = s.Items().Consume(ctx, it.ID, alice.ID, item.Effect{GemsAwarded: -5})
	if !stderrors.Is(err, item.ErrEffectFailed) {
		t.Fatalf("Consume() error = %v, want ErrEffectFailed", err)
	}
	if _, err := s.Items().GetOwned(ctx, it.ID, alice.ID); err != nil {
		t.Errorf("item should be retained: %v", err)
	}
}

func TestGrantAccessRequiresProfileAndMap(t *testing.T) {
	s := New()
	ctx := context.Background()

	inst, err := s.Institutions().Create(ctx, "Hogwarts", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	m, err := s.Institutions().CreateMap(ctx, inst.ID, "Great Hall")
	if err != nil {
		t.Fatalf("CreateMap() error = %v", err)
	}
	p, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Harry"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := s.Institutions().GrantAccess(ctx, uuid.New(), m.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown profile error = %v, want not_found", err)
	}
	if _, err := s.Institutions().GrantAccess(ctx, p.ID, uuid.New()); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown map error = %v, want not_found", err)
	}
	if _, err := s.Institutions().CreateMap(ctx, uuid.New(), "Nowhere"); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("map for unknown institution error = %v, want not_found", err)
	}
	if _, err := s.Institutions().Create(ctx, "Hogwarts", "hash"); !errors.Is(err, errors.ErrorTypeConflict) {
		t.Errorf("duplicate institution error = %v, want conflict", err)
	}
}

func TestResetRejectsUnknownStarterType(t *testing.T) {
	s := New()
	ctx := context.Background()

	p, err := s.Profiles().Create(ctx, profile.NewProfile{Name: "Alice", Gems: 9})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = s.Profiles().Reset(ctx, profile.ResetProfile{
		ID:      p.ID,
		Gems:    50,
		Starter: []profile.StarterItem{{Type: "Wand", Subtype: "Oak"}, {Type: "Broom", Subtype: "Nimbus"}},
	})
	if !errors.Is(err, errors.ErrorTypeValidation) {
		t.Fatalf("Reset() error = %v, want validation", err)
	}

	stored, err := s.Profiles().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Gems != 9 {
		t.Errorf("Gems = %d, want unchanged 9", stored.Gems)
	}
	if owned, _ := s.Items().ListByOwner(ctx, p.ID); len(owned) != 0 {
		t.Errorf("owned = %+v, want none", owned)
	}

	if _, err := s.Profiles().Reset(ctx, profile.ResetProfile{ID: uuid.New()}); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("unknown profile Reset() error = %v, want not_found", err)
	}
}
