package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// failuresFile is the failure manifest name inside the profile root.
const failuresFile = "failed_files.json"

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore persists document profiles as JSON files mirroring the
// corpus folder structure. One file per document keeps profiles
// reviewable and diffable; analysis re-reads the tree fresh each run.
type ProfileStore struct {
	root string

	// mu serialises failure-manifest writes; profile writes are
	// per-document and need no coordination.
	mu sync.Mutex
}

// NewProfileStore creates a store rooted at dir, creating it if needed.
func NewProfileStore(dir string) (*ProfileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragbench", "profiles")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}
	return &ProfileStore{root: dir}, nil
}

// Root returns the profile tree root.
func (s *ProfileStore) Root() string {
	return s.root
}

// Save writes the profile next to its corpus-relative location, named
// by DocID. An existing profile for the same document is replaced.
func (s *ProfileStore) Save(_ context.Context, profile *domain.DocumentProfile, relPath string) error {
	dir := filepath.Join(s.root, filepath.Dir(filepath.FromSlash(relPath)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", profile.DocID, err)
	}

	path := filepath.Join(dir, profile.DocID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing profile %s: %w", profile.DocID, err)
	}
	return nil
}

// Get loads one profile by DocID, searching the tree.
func (s *ProfileStore) Get(_ context.Context, docID string) (*domain.DocumentProfile, error) {
	path, err := s.findProfile(docID)
	if err != nil {
		return nil, err
	}
	return readProfile(path)
}

// Exists reports whether a profile for DocID is stored.
func (s *ProfileStore) Exists(_ context.Context, docID string) (bool, error) {
	_, err := s.findProfile(docID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List loads every profile in the tree in lexical path order.
func (s *ProfileStore) List(_ context.Context) ([]*domain.DocumentProfile, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") || d.Name() == failuresFile {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking profile tree: %w", err)
	}
	sort.Strings(paths)

	profiles := make([]*domain.DocumentProfile, 0, len(paths))
	for _, path := range paths {
		profile, err := readProfile(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// RecordFailure appends an entry to the failure manifest.
func (s *ProfileStore) RecordFailure(_ context.Context, failure driven.FailedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures, err := s.readFailures()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	failures = append(failures, failure)

	data, err := json.MarshalIndent(failures, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding failure manifest: %w", err)
	}
	path := filepath.Join(s.root, failuresFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing failure manifest: %w", err)
	}
	return nil
}

// Failures returns the accumulated failure manifest. A missing
// manifest is an empty one.
func (s *ProfileStore) Failures(_ context.Context) ([]driven.FailedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures, err := s.readFailures()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return failures, err
}

// Close is a no-op; every write is flushed as it happens.
func (s *ProfileStore) Close() error {
	return nil
}

func (s *ProfileStore) readFailures() ([]driven.FailedFile, error) {
	data, err := os.ReadFile(filepath.Join(s.root, failuresFile))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading failure manifest: %w", err)
	}

	var failures []driven.FailedFile
	if err := json.Unmarshal(data, &failures); err != nil {
		return nil, fmt.Errorf("decoding failure manifest: %w", err)
	}
	return failures, nil
}

// findProfile locates a profile file by DocID anywhere in the tree.
func (s *ProfileStore) findProfile(docID string) (string, error) {
	target := docID + ".json"
	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == target {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching for profile %s: %w", docID, err)
	}
	if found == "" {
		return "", fmt.Errorf("profile %s: %w", docID, domain.ErrNotFound)
	}
	return found, nil
}

func readProfile(path string) (*domain.DocumentProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var profile domain.DocumentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}
	return &profile, nil
}
