// Package mock provides an in-memory test double for [history.Store].
//
// The mock records every saved entry and exposes exported fields that control
// what it returns. It is safe for concurrent use via an internal
// [sync.Mutex].
//
// Typical usage:
//
//	store := &mock.Store{}
//	store.RecentResult = []history.Entry{{Specialty: "Cardiología"}}
//
//	// inject store into the system under test …
//
//	if got := len(store.Saved()); got != 1 {
//	    t.Errorf("expected 1 saved entry, got %d", got)
//	}
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/pvillacis/triaje593/internal/history"
)

// Compile-time interface check.
var _ history.Store = (*Store)(nil)

// Store is a configurable test double for [history.Store].
type Store struct {
	mu sync.Mutex

	// saved records every entry passed to Save, in order.
	saved []history.Entry

	// SaveErr is returned by [Store.Save] when non-nil.
	SaveErr error

	// RecentResult is returned by [Store.Recent]. When nil, Recent returns
	// the saved entries, newest first.
	RecentResult []history.Entry

	// RecentErr is returned by [Store.Recent] when non-nil.
	RecentErr error
}

// Save records the entry and returns SaveErr.
func (s *Store) Save(_ context.Context, entry history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saved = append(s.saved, entry)
	return nil
}

// Recent returns RecentResult when set, otherwise the saved entries in
// reverse insertion order, capped at limit.
func (s *Store) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecentErr != nil {
		return nil, s.RecentErr
	}
	if s.RecentResult != nil {
		return slices.Clone(s.RecentResult), nil
	}
	if limit <= 0 {
		limit = history.DefaultRecentLimit
	}
	out := make([]history.Entry, 0, min(limit, len(s.saved)))
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.saved[i])
	}
	return out, nil
}

// Saved returns a copy of every entry passed to Save. Thread-safe.
func (s *Store) Saved() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// Reset clears all recorded entries. Thread-safe.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
}
