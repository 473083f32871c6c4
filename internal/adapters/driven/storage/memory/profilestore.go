package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore is an in-memory implementation of driven.ProfileStore,
// used by tests and by dry runs that must not touch disk.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.DocumentProfile
	paths    map[string]string
	failures []driven.FailedFile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*domain.DocumentProfile),
		paths:    make(map[string]string),
	}
}

// Save stores or replaces a profile by DocID.
func (s *ProfileStore) Save(_ context.Context, profile *domain.DocumentProfile, relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profile.DocID] = &copied
	s.paths[profile.DocID] = relPath
	return nil
}

// Get retrieves a profile by DocID.
func (s *ProfileStore) Get(_ context.Context, docID string) (*domain.DocumentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

// Exists reports whether a profile is stored for DocID.
func (s *ProfileStore) Exists(_ context.Context, docID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[docID]
	return ok, nil
}

// List returns all profiles sorted by stored relative path, DocID as
// tiebreak, matching the on-disk store's traversal order.
func (s *ProfileStore) List(_ context.Context) ([]*domain.DocumentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := s.paths[ids[i]], s.paths[ids[j]]
		if pi != pj {
			return pi < pj
		}
		return ids[i] < ids[j]
	})

	result := make([]*domain.DocumentProfile, 0, len(ids))
	for _, id := range ids {
		copied := *s.profiles[id]
		result = append(result, &copied)
	}
	return result, nil
}

// RecordFailure appends a failure entry.
func (s *ProfileStore) RecordFailure(_ context.Context, failure driven.FailedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure)
	return nil
}

// Failures returns the accumulated failure entries.
func (s *ProfileStore) Failures(_ context.Context) ([]driven.FailedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]driven.FailedFile, len(s.failures))
	copy(result, s.failures)
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *ProfileStore) Close() error {
	return nil
}
