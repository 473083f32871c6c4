package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed index over annotated documents. It exists
// to make skip-existing checks on large corpora cheap: a point lookup
// instead of a profile-tree stat.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragbench/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragbench", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProfileIndex returns a ProfileIndex interface backed by this store.
func (s *Store) ProfileIndex() driven.ProfileIndex {
	return &profileIndex{store: s}
}

func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Profile Index ====================

// profileIndex implements driven.ProfileIndex.
type profileIndex struct {
	store *Store
}

var _ driven.ProfileIndex = (*profileIndex)(nil)

// Put records that a document has been annotated.
func (p *profileIndex) Put(ctx context.Context, docID, relPath string) error {
	_, err := p.store.db.ExecContext(ctx, `
		INSERT INTO profiles (doc_id, rel_path)
		VALUES (?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			rel_path = excluded.rel_path,
			indexed_at = CURRENT_TIMESTAMP
	`, docID, relPath)
	if err != nil {
		return fmt.Errorf("indexing profile %s: %w", docID, err)
	}
	return nil
}

// Has reports whether the document is indexed.
func (p *profileIndex) Has(ctx context.Context, docID string) (bool, error) {
	var one int
	row := p.store.db.QueryRowContext(ctx, "SELECT 1 FROM profiles WHERE doc_id = ?", docID)
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up profile %s: %w", docID, err)
	}
	return true, nil
}

// Delete removes a document from the index.
func (p *profileIndex) Delete(ctx context.Context, docID string) error {
	_, err := p.store.db.ExecContext(ctx, "DELETE FROM profiles WHERE doc_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting profile %s: %w", docID, err)
	}
	return nil
}

// Close releases the underlying database through the owning store.
func (p *profileIndex) Close() error {
	return p.store.Close()
}
