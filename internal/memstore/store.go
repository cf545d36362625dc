// Package memstore provides an in-process implementation of the reserve and
// ban store, used when no database is configured and in tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"giphygetter/internal/models"
)

type lookupKey struct {
	keyword string
	outcome string
}

// Store keeps reservations, bans and keyword lookup counts in memory.
type Store struct {
	mu       sync.RWMutex
	reserves map[string]string
	bans     map[string]struct{}
	lookups  map[lookupKey]*models.KeywordLookup
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		reserves: make(map[string]string),
		bans:     make(map[string]struct{}),
		lookups:  make(map[lookupKey]*models.KeywordLookup),
	}
}

// GetReservation returns the url reserved for keyword. An empty url counts
// as a miss.
func (s *Store) GetReservation(ctx context.Context, keyword string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	url := s.reserves[keyword]
	return url, url != "", nil
}

// UpsertReservation pins keyword to url, replacing any previous value.
func (s *Store) UpsertReservation(ctx context.Context, keyword, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.reserves[keyword] = url
	s.mu.Unlock()
	return nil
}

// RemoveReservationsForURL deletes every reservation pointing at url.
func (s *Store) RemoveReservationsForURL(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for keyword, reserved := range s.reserves {
		if reserved == url {
			delete(s.reserves, keyword)
		}
	}
	return nil
}

// IsBanned reports whether url is banned.
func (s *Store) IsBanned(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bans[url]
	return ok, nil
}

// AddBan bans url. Repeated bans are no-ops.
func (s *Store) AddBan(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.bans[url] = struct{}{}
	s.mu.Unlock()
	return nil
}

// CountReservations returns the number of reserved keywords.
func (s *Store) CountReservations(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.reserves)), nil
}

// CountBans returns the number of banned urls.
func (s *Store) CountBans(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.bans)), nil
}

// IncrementKeywordLookup bumps the lookup count for keyword and outcome.
func (s *Store) IncrementKeywordLookup(ctx context.Context, keyword, outcome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := lookupKey{keyword: keyword, outcome: outcome}
	l, ok := s.lookups[k]
	if !ok {
		l = &models.KeywordLookup{Keyword: keyword, Outcome: outcome}
		s.lookups[k] = l
	}
	l.Count++
	l.LastSeenAt = time.Now()
	return nil
}

// GetAllKeywordLookups returns a copy of all lookup counts.
func (s *Store) GetAllKeywordLookups(ctx context.Context) ([]models.KeywordLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lookups := make([]models.KeywordLookup, 0, len(s.lookups))
	for _, l := range s.lookups {
		lookups = append(lookups, *l)
	}
	return lookups, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}
