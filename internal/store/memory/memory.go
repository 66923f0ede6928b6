// Package memory provides an in-memory offer store, used for tests and for
// throwaway crawls where persistence is not wanted.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/praclabs/workinator/internal/offers"
)

// Store keeps offers in a map keyed by fingerprint. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	byFP map[string]offers.Offer
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{byFP: make(map[string]offers.Offer)}
}

// InsertIfAbsent stores the offer unless its fingerprint is already present.
func (s *Store) InsertIfAbsent(_ context.Context, offer offers.Offer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byFP[offer.Fingerprint]; ok {
		return false, nil
	}
	s.byFP[offer.Fingerprint] = offer
	return true, nil
}

// Query returns stored offers matching the filters, newest first.
func (s *Store) Query(_ context.Context, f offers.Filters) ([]offers.Offer, error) {
	s.mu.RLock()
	matched := make([]offers.Offer, 0, len(s.byFP))
	for _, o := range s.byFP {
		if matches(o, f) {
			matched = append(matched, o)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AddedAt.After(matched[j].AddedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// Len reports the number of stored offers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byFP)
}

func matches(o offers.Offer, f offers.Filters) bool {
	if f.Company != "" && !containsFold(o.Company, f.Company) {
		return false
	}
	if f.Position != "" && !containsFold(o.Position, f.Position) {
		return false
	}
	if f.City != "" && !containsFold(o.City, f.City) {
		return false
	}
	if !f.From.IsZero() && o.AddedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && o.AddedAt.After(f.To) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
