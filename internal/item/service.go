package item

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/errors"
	"wizardgo/internal/shared/geo"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Config holds the item lifecycle thresholds.
type Config struct {
	MaxCollectionDistanceMeters float64
	DefaultTTL                  time.Duration
	DefaultRadiusMeters         float64
	MaxRadiusMeters             float64
	ChestMinGems                int
	ChestMaxGems                int
}

func DefaultConfig() Config {
	return Config{
		MaxCollectionDistanceMeters: 10.0,
		DefaultTTL:                  24 * time.Hour,
		DefaultRadiusMeters:         100.0,
		MaxRadiusMeters:             5000.0,
		ChestMinGems:                5,
		ChestMaxGems:                15,
	}
}

func ConfigFrom(game config.GameConfig) Config {
	return Config{
		MaxCollectionDistanceMeters: game.MaxCollectionDistanceMeters,
		DefaultTTL:                  time.Duration(game.ItemExpirationHours) * time.Hour,
		DefaultRadiusMeters:         game.DefaultMapRadiusMeters,
		MaxRadiusMeters:             game.MaxMapRadiusMeters,
		ChestMinGems:                game.ChestMinGems,
		ChestMaxGems:                game.ChestMaxGems,
	}
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithGemRoller(roll GemRoller) Option {
	return func(s *Service) {
		s.rollGems = roll
	}
}

type Service struct {
	store    Store
	cfg      Config
	now      func() time.Time
	rollGems GemRoller
	logger   *slog.Logger
}

func NewService(store Store, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	logger.Debug("Initializing item service",
		"max_collection_distance_meters", cfg.MaxCollectionDistanceMeters,
		"default_ttl", cfg.DefaultTTL,
		"default_radius_meters", cfg.DefaultRadiusMeters,
	)

	s := &Service{
		store:    store,
		cfg:      cfg,
		now:      time.Now,
		rollGems: defaultGemRoller,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn places a new unclaimed item on an existing map.
func (s *Service) Spawn(ctx context.Context, req SpawnRequest) (*Item, error) {
	if _, err := s.store.MapOwner(ctx, req.MapID); err != nil {
		return nil, err
	}
	return s.spawn(ctx, req)
}

// SpawnForInstitution places an item on a map owned by institutionID.
func (s *Service) SpawnForInstitution(ctx context.Context, institutionID uuid.UUID, req SpawnRequest) (*Item, error) {
	owner, err := s.store.MapOwner(ctx, req.MapID)
	if err != nil {
		return nil, err
	}
	if owner != institutionID {
		return nil, errors.NotFoundf("map %s not found for institution", req.MapID)
	}
	return s.spawn(ctx, req)
}

func (s *Service) spawn(ctx context.Context, req SpawnRequest) (*Item, error) {
	itemType, err := ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	location := geo.NewPoint(req.Latitude, req.Longitude)
	if err := location.Validate(); err != nil {
		return nil, err
	}

	ttl := s.cfg.DefaultTTL
	if req.TTLHours != nil {
		if *req.TTLHours > config.MaxItemExpirationHours {
			return nil, errors.Validationf("expires_in_hours must not exceed %d", config.MaxItemExpirationHours)
		}
		ttl = time.Duration(*req.TTLHours) * time.Hour
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	mapID := req.MapID
	created, err := s.store.Create(ctx, NewItem{
		Type:      itemType,
		Subtype:   req.Subtype,
		MapID:     &mapID,
		Location:  location,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Item spawned",
		"component", "item_service",
		"item_id", created.ID,
		"type", created.Type,
		"subtype", created.Subtype,
		"map_id", mapID,
		"expires_at", expiresAt,
	)
	return created, nil
}

// ProximitySearch lists the collectible items on a map within radius meters of
// the player, nearest first. A nil radius uses the configured default; zero
// matches only items at the player's exact position.
func (s *Service) ProximitySearch(ctx context.Context, mapID uuid.UUID, lat, lng float64, radius *float64) ([]NearbyItem, error) {
	center := geo.NewPoint(lat, lng)
	if err := center.Validate(); err != nil {
		return nil, err
	}

	radiusMeters := s.cfg.DefaultRadiusMeters
	if radius != nil {
		radiusMeters = *radius
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 || radiusMeters > s.cfg.MaxRadiusMeters {
		return nil, errors.Validationf("radius must be between 0 and %.0f meters", s.cfg.MaxRadiusMeters)
	}

	items, err := s.store.FindNearby(ctx, NearbyQuery{
		MapID:        mapID,
		Center:       center,
		RadiusMeters: radiusMeters,
		Now:          s.now(),
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []NearbyItem{}
	}
	return items, nil
}

// Collect transfers an unclaimed item to the player standing at (lat, lng).
// Concurrent collectors of the same item resolve to exactly one owner.
func (s *Service) Collect(ctx context.Context, itemID, playerID uuid.UUID, lat, lng float64) (*Item, error) {
	logger := s.logger.With("component", "item_service", "operation", "collect", "item_id", itemID, "player_id", playerID)

	player := geo.NewPoint(lat, lng)
	if err := player.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.ProfileExists(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFoundf("player not found: %s", playerID)
	}

	now := s.now()
	current, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCollectible(ctx, current, player, now); err != nil {
		return nil, err
	}

	claimed, ok, err := s.store.Claim(ctx, ClaimRequest{
		ItemID:            itemID,
		PlayerID:          playerID,
		Location:          player,
		MaxDistanceMeters: s.cfg.MaxCollectionDistanceMeters,
		Now:               now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else changed the row between our read and the claim.
		logger.Debug("Conditional claim matched no row, reclassifying")
		return nil, s.explainFailedClaim(ctx, itemID, player, now)
	}

	logger.Info("Item collected", "type", claimed.Type, "subtype", claimed.Subtype)
	return claimed, nil
}

func (s *Service) checkCollectible(ctx context.Context, it *Item, player geo.Point, now time.Time) error {
	if it.IsClaimed() {
		return ErrAlreadyOwned
	}
	if it.ExpiredAt(now) {
		return ErrExpired
	}

	distance, err := s.store.DistanceTo(ctx, it.ID, player)
	if err != nil {
		return err
	}
	if distance > s.cfg.MaxCollectionDistanceMeters {
		return errors.Wrap(errors.ErrorTypeTooFar,
			fmt.Sprintf("item is %.1fm away, collection range is %.1fm", distance, s.cfg.MaxCollectionDistanceMeters),
			ErrTooFar)
	}
	return nil
}

func (s *Service) explainFailedClaim(ctx context.Context, itemID uuid.UUID, player geo.Point, now time.Time) error {
	current, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.checkCollectible(ctx, current, player, now); err != nil {
		return err
	}
	// Still collectible on re-read: the store's own distance check rejected it.
	return ErrTooFar
}

// Use consumes an item owned by the player and applies its effect.
func (s *Service) Use(ctx context.Context, itemID, playerID uuid.UUID) (*UseResult, error) {
	logger := s.logger.With("component", "item_service", "operation", "use", "item_id", itemID, "player_id", playerID)

	owned, err := s.store.GetOwned(ctx, itemID, playerID)
	if err != nil {
		return nil, err
	}

	effect, err := s.effectFor(*owned)
	if err != nil {
		logger.Warn("Item effect rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCannotUse, err)
	}

	if err := s.store.Consume(ctx, itemID, playerID, effect); err != nil {
		if stderrors.Is(err, ErrEffectFailed) {
			logger.Warn("Item effect failed, item retained", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrCannotUse, err)
		}
		return nil, err
	}

	logger.Info("Item used", "type", owned.Type, "subtype", owned.Subtype, "gems_awarded", effect.GemsAwarded)
	return &UseResult{
		ItemID:      itemID,
		Type:        owned.Type,
		Effect:      owned.Subtype,
		GemsAwarded: effect.GemsAwarded,
	}, nil
}

// Cleanup deletes unclaimed items whose expiry has passed.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Expired items removed", "component", "item_service", "operation", "cleanup", "deleted", deleted)
	}
	return deleted, nil
}

// Sync records the player's position and moves every item they carry with them.
func (s *Service) Sync(ctx context.Context, playerID uuid.UUID, lat, lng float64) (*SyncResult, error) {
	location := geo.NewPoint(lat, lng)
	if err := location.Validate(); err != nil {
		return nil, err
	}

	moved, err := s.store.SyncOwnerLocation(ctx, playerID, location)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Player location synced",
		"component", "item_service",
		"operation", "sync",
		"player_id", playerID,
		"items_moved", moved,
	)
	return &SyncResult{PlayerID: playerID, Location: location, ItemsMoved: moved}, nil
}

func (s *Service) Inventory(ctx context.Context, playerID uuid.UUID) ([]Item, error) {
	exists, err := s.store.ProfileExists(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFoundf("player not found: %s", playerID)
	}

	items, err := s.store.ListByOwner(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Service) InstitutionItems(ctx context.Context, institutionID uuid.UUID) ([]InstitutionItem, error) {
	items, err := s.store.ListForInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []InstitutionItem{}
	}
	return items, nil
}

// DeleteForInstitution removes an unclaimed item from one of the institution's maps.
func (s *Service) DeleteForInstitution(ctx context.Context, institutionID, itemID uuid.UUID) error {
	deleted, err := s.store.DeleteUnclaimedForInstitution(ctx, institutionID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFoundf("item %s not found or not owned by institution", itemID)
	}

	s.logger.Info("Item deleted by institution",
		"component", "item_service",
		"institution_id", institutionID,
		"item_id", itemID,
	)
	return nil
}

func (s *Service) MapStats(ctx context.Context, mapID uuid.UUID) (*MapStats, error) {
	if _, err := s.store.MapOwner(ctx, mapID); err != nil {
		return nil, err
	}
	return s.store.MapStats(ctx, mapID, s.now())
}

func (s *Service) Leaderboard(ctx context.Context, mapID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if _, err := s.store.MapOwner(ctx, mapID); err != nil {
		return nil, err
	}

	entries, err := s.store.Leaderboard(ctx, mapID, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	return entries, nil
}
