package profile_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/battle"
	"wizardgo/internal/item"
	"wizardgo/internal/memory"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

func newService() *profile.Service {
	service, _ := newServiceWithStore()
	return service
}

func newServiceWithStore() (*profile.Service, *memory.Store) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	return profile.NewService(store.Profiles(), 100, logger), store
}

func TestLoginCreatesThenReturnsExisting(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.Login(ctx, "  Merlin ")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if created.Name != "Merlin" || created.Level != 1 || created.Gems != 100 {
		t.Errorf("created = %+v, want Merlin at level 1 with 100 gems", created)
	}

	again, err := service.Login(ctx, "Merlin")
	if err != nil {
		t.Fatalf("second Login() error = %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("second login returned %s, want %s", again.ID, created.ID)
	}
}

func TestLoginValidation(t *testing.T) {
	service := newService()
	ctx := context.Background()

	for _, name := range []string{"", "   ", strings.Repeat("x", 65)} {
		if _, err := service.Login(ctx, name); !errors.Is(err, errors.ErrorTypeValidation) {
			t.Errorf("Login(%q) error = %v, want validation", name, err)
		}
	}
}

func TestConcurrentLoginSameName(t *testing.T) {
	service := newService()
	ctx := context.Background()

	const n = 10
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := service.Login(ctx, "Morgana")
			if err != nil {
				t.Errorf("Login() error = %v", err)
				return
			}
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent logins produced different profiles: %v", ids)
		}
	}
}

func TestGuestLogin(t *testing.T) {
	service := newService()
	ctx := context.Background()

	guest, err := service.GuestLogin(ctx)
	if err != nil {
		t.Fatalf("GuestLogin() error = %v", err)
	}
	if guest.ID != profile.GuestID || guest.Name != profile.GuestName {
		t.Errorf("guest = %+v", guest)
	}

	again, err := service.GuestLogin(ctx)
	if err != nil {
		t.Fatalf("second GuestLogin() error = %v", err)
	}
	if again.ID != guest.ID {
		t.Errorf("guest id changed: %s", again.ID)
	}
}

func TestResetGuest(t *testing.T) {
	service, store := newServiceWithStore()
	ctx := context.Background()

	guest, err := service.GuestLogin(ctx)
	if err != nil {
		t.Fatalf("GuestLogin() error = %v", err)
	}
	rival, err := service.Login(ctx, "Morgana")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Play a little: win three battles, lose one, pick up a scroll.
	for i := 0; i < 3; i++ {
		if _, err := store.Battles().Record(ctx, battle.Report{AttackerID: guest.ID, DefenderID: rival.ID, WinnerID: guest.ID}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if _, err := store.Battles().Record(ctx, battle.Report{AttackerID: rival.ID, DefenderID: guest.ID, WinnerID: rival.ID}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	scroll, err := store.Items().Create(ctx, item.NewItem{Type: item.TypeScroll, Subtype: "Fireball", Location: geo.NewPoint(1, 1)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	claim := item.ClaimRequest{ItemID: scroll.ID, PlayerID: guest.ID, Location: geo.NewPoint(1, 1), MaxDistanceMeters: 10, Now: time.Now()}
	if _, ok, err := store.Items().Claim(ctx, claim); err != nil || !ok {
		t.Fatalf("Claim() = %v, %v", ok, err)
	}

	for round := 1; round <= 2; round++ {
		reset, err := service.ResetGuest(ctx)
		if err != nil {
			t.Fatalf("ResetGuest() round %d error = %v", round, err)
		}
		if reset.ID != profile.GuestID || reset.Level != 1 || reset.Wins != 0 || reset.Losses != 0 || reset.Gems != 100 {
			t.Errorf("round %d reset = %+v, want fresh stats with 100 gems", round, reset)
		}
		if reset.Location == nil || *reset.Location != profile.GuestHome {
			t.Errorf("round %d location = %v, want %v", round, reset.Location, profile.GuestHome)
		}

		owned, err := store.Items().ListByOwner(ctx, profile.GuestID)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		var subtypes []string
		for _, it := range owned {
			if it.ID == scroll.ID {
				t.Errorf("round %d: collected scroll survived the reset", round)
			}
			if it.MapID != nil || it.ExpiresAt != nil {
				t.Errorf("starter item %+v should have no map and no expiry", it)
			}
			subtypes = append(subtypes, it.Subtype)
		}
		slices.Sort(subtypes)
		if want := []string{"Focus Crystal", "Oak Branch", "Stun Brew"}; !slices.Equal(subtypes, want) {
			t.Errorf("round %d inventory = %v, want %v", round, subtypes, want)
		}
	}

	other, err := service.GetProfile(ctx, rival.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if other.Wins != 1 || other.Losses != 3 {
		t.Errorf("rival stats changed: wins=%d losses=%d", other.Wins, other.Losses)
	}
}

func TestResetGuestCreatesMissingGuest(t *testing.T) {
	service := newService()

	reset, err := service.ResetGuest(context.Background())
	if err != nil {
		t.Fatalf("ResetGuest() error = %v", err)
	}
	if reset.ID != profile.GuestID || reset.Name != profile.GuestName {
		t.Errorf("reset = %+v, want the guest profile", reset)
	}
}

func TestGetAndListProfiles(t *testing.T) {
	service := newService()
	ctx := context.Background()

	for _, name := range []string{"Cedric", "Alice", "Bob"} {
		if _, err := service.Login(ctx, name); err != nil {
			t.Fatalf("Login(%s) error = %v", name, err)
		}
	}

	list, err := service.ListProfiles(ctx, 2)
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alice" || list[1].Name != "Bob" {
		t.Errorf("ListProfiles(2) = %+v, want Alice then Bob", list)
	}

	got, err := service.GetProfile(ctx, list[0].ID)
	if err != nil || got.Name != "Alice" {
		t.Errorf("GetProfile() = %+v, %v", got, err)
	}
	if _, err := service.GetProfile(ctx, uuid.New()); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Errorf("GetProfile() unknown error = %v, want not_found", err)
	}
}
