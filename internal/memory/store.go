// Package memory keeps every domain's records in process memory. It backs the
// test suites and STORAGE_DRIVER=memory, and mirrors the constraints the
// Postgres schema enforces.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"wizardgo/internal/battle"
	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/profile"
)

type Option func(*Store)

// WithClock sets the clock used for created_at and granted_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type institutionRecord struct {
	institution.Institution
	passwordHash string
}

type accessKey struct {
	profileID uuid.UUID
	mapID     uuid.UUID
}

// Store holds all records behind one lock, so multi-record updates are atomic.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	profiles     map[uuid.UUID]*profile.Profile
	institutions map[uuid.UUID]*institutionRecord
	maps         map[uuid.UUID]*institution.Map
	items        map[uuid.UUID]*item.Item
	battles      []battle.Log
	access       map[accessKey]time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		profiles:     make(map[uuid.UUID]*profile.Profile),
		institutions: make(map[uuid.UUID]*institutionRecord),
		maps:         make(map[uuid.UUID]*institution.Map),
		items:        make(map[uuid.UUID]*item.Item),
		access:       make(map[accessKey]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Profiles() *ProfileStore {
	return &ProfileStore{s: s}
}

func (s *Store) Items() *ItemStore {
	return &ItemStore{s: s}
}

func (s *Store) Battles() *BattleStore {
	return &BattleStore{s: s}
}

func (s *Store) Institutions() *InstitutionStore {
	return &InstitutionStore{s: s}
}

var (
	_ profile.Store     = (*ProfileStore)(nil)
	_ item.Store        = (*ItemStore)(nil)
	_ battle.Store      = (*BattleStore)(nil)
	_ institution.Store = (*InstitutionStore)(nil)
)

func (s *Store) profileByName(name string) *profile.Profile {
	for _, p := range s.profiles {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
