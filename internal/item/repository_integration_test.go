//go:build integration

package item_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/profile"
	"wizardgo/internal/shared/database/dbtest"
	"wizardgo/internal/shared/geo"
)

type pgFixture struct {
	items    *item.Repository
	profiles *profile.Repository
	mapID    uuid.UUID
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)
	logger := dbtest.Logger()

	insts := institution.NewRepository(db, logger)
	inst, err := insts.Create(ctx, "Academy "+uuid.NewString(), "hash")
	if err != nil {
		t.Fatalf("create institution: %v", err)
	}
	m, err := insts.CreateMap(ctx, inst.ID, "Quad")
	if err != nil {
		t.Fatalf("create map: %v", err)
	}

	return &pgFixture{
		items:    item.NewRepository(db, logger),
		profiles: profile.NewRepository(db, logger),
		mapID:    m.ID,
	}
}

func (f *pgFixture) wizard(t *testing.T, gems int) *profile.Profile {
	t.Helper()
	p, err := f.profiles.Create(context.Background(), profile.NewProfile{Name: "Wizard " + uuid.NewString(), Gems: gems})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func (f *pgFixture) place(t *testing.T, p geo.Point, expiresAt *time.Time) *item.Item {
	t.Helper()
	mapID := f.mapID
	it, err := f.items.Create(context.Background(), item.NewItem{Type: item.TypeGem, Subtype: "Ruby", MapID: &mapID, Location: p, ExpiresAt: expiresAt})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return it
}

func TestRepositoryClaimIsConditional(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	alice := f.wizard(t, 0)
	bob := f.wizard(t, 0)
	spot := geo.NewPoint(sfLat, sfLng)
	now := time.Now()

	it := f.place(t, spot, nil)
	req := item.ClaimRequest{ItemID: it.ID, PlayerID: alice.ID, Location: geo.NewPoint(sfLat+0.001, sfLng), MaxDistanceMeters: 10, Now: now}

	if _, ok, err := f.items.Claim(ctx, req); err != nil || ok {
		t.Fatalf("out of range Claim() = %v, %v; want no match", ok, err)
	}

	req.Location = geo.NewPoint(sfLat+0.00005, sfLng) // ~5.6m
	claimed, ok, err := f.items.Claim(ctx, req)
	if err != nil || !ok {
		t.Fatalf("Claim() = %v, %v; want success", ok, err)
	}
	if claimed.OwnerID == nil || *claimed.OwnerID != alice.ID {
		t.Errorf("OwnerID = %v, want %s", claimed.OwnerID, alice.ID)
	}
	if geo.Distance(claimed.Location, req.Location) > 0.01 {
		t.Errorf("claimed item at %v, want moved to %v", claimed.Location, req.Location)
	}

	req.PlayerID = bob.ID
	if _, ok, err := f.items.Claim(ctx, req); err != nil || ok {
		t.Errorf("second Claim() = %v, %v; want no match", ok, err)
	}

	past := now.Add(-time.Minute)
	expired := f.place(t, spot, &past)
	req.ItemID = expired.ID
	req.Location = spot
	if _, ok, err := f.items.Claim(ctx, req); err != nil || ok {
		t.Errorf("expired Claim() = %v, %v; want no match", ok, err)
	}
}

func TestRepositoryConcurrentClaimHasOneWinner(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	spot := geo.NewPoint(sfLat, sfLng)
	it := f.place(t, spot, nil)

	const players = 8
	ids := make([]uuid.UUID, players)
	for i := range ids {
		ids[i] = f.wizard(t, 0).ID
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []uuid.UUID
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, ok, err := f.items.Claim(ctx, item.ClaimRequest{ItemID: it.ID, PlayerID: id, Location: spot, MaxDistanceMeters: 10, Now: time.Now()})
			if err != nil {
				t.Errorf("Claim() error = %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins = append(wins, id)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if len(wins) != 1 {
		t.Fatalf("%d claims succeeded, want exactly 1", len(wins))
	}
	stored, err := f.items.GetByID(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.OwnerID == nil || *stored.OwnerID != wins[0] {
		t.Errorf("OwnerID = %v, want %s", stored.OwnerID, wins[0])
	}
}

func TestRepositoryConsumeRollsBackFailedEffect(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	alice := f.wizard(t, 3)
	spot := geo.NewPoint(sfLat, sfLng)

	it := f.place(t, spot, nil)
	if _, ok, err := f.items.Claim(ctx, item.ClaimRequest{ItemID: it.ID, PlayerID: alice.ID, Location: spot, MaxDistanceMeters: 10, Now: time.Now()}); err != nil || !ok {
		t.Fatalf("Claim() = %v, %v", ok, err)
	}

	// gems >= 0 is a table constraint, so a large deduction fails the update.
	err := f.items.Consume(ctx, it.ID, alice.ID, item.Effect{GemsAwarded: -5})
	if !stderrors.Is(err, item.ErrEffectFailed) {
		t.Fatalf("Consume() error = %v, want ErrEffectFailed", err)
	}
	if _, err := f.items.GetOwned(ctx, it.ID, alice.ID); err != nil {
		t.Errorf("item deleted despite rollback: %v", err)
	}
	if p, err := f.profiles.GetByID(ctx, alice.ID); err != nil || p.Gems != 3 {
		t.Errorf("gems after rollback = %+v, %v; want 3", p, err)
	}

	if err := f.items.Consume(ctx, it.ID, alice.ID, item.Effect{GemsAwarded: 4}); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if _, err := f.items.GetByID(ctx, it.ID); err == nil {
		t.Error("consumed item still exists")
	}
	if p, err := f.profiles.GetByID(ctx, alice.ID); err != nil || p.Gems != 7 {
		t.Errorf("gems after use = %+v, %v; want 7", p, err)
	}
}

func TestRepositoryFindNearby(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	spot := geo.NewPoint(sfLat, sfLng)

	here := f.place(t, spot, nil)
	near := f.place(t, geo.NewPoint(sfLat+0.0003, sfLng), nil) // ~33m
	f.place(t, geo.NewPoint(sfLat+0.01, sfLng), nil)           // ~1.1km

	got, err := f.items.FindNearby(ctx, item.NearbyQuery{MapID: f.mapID, Center: spot, RadiusMeters: 100, Now: time.Now()})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != here.ID || got[1].ID != near.ID {
		t.Fatalf("FindNearby() = %+v, want [here near]", got)
	}
	if got[1].DistanceMeters < 30 || got[1].DistanceMeters > 36 {
		t.Errorf("geodesic distance = %.1fm, want ~33m", got[1].DistanceMeters)
	}

	exact, err := f.items.FindNearby(ctx, item.NearbyQuery{MapID: f.mapID, Center: spot, RadiusMeters: 0, Now: time.Now()})
	if err != nil {
		t.Fatalf("FindNearby(0) error = %v", err)
	}
	if len(exact) != 1 || exact[0].ID != here.ID {
		t.Errorf("zero radius = %+v, want only the item underfoot", exact)
	}
}
