package driven

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// FailedFile records one document the pipeline could not annotate.
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ProfileStore persists document profiles. The on-disk layout mirrors
// the source corpus folder structure, one JSON file per document.
// Profiles are append/overwrite-by-DocID; analysis always re-reads the
// full set fresh.
type ProfileStore interface {
	// Save writes a profile, superseding any previous record with the
	// same DocID. relPath is the document's corpus-relative path used
	// to mirror the folder structure.
	Save(ctx context.Context, profile *domain.DocumentProfile, relPath string) error

	// Get loads one profile by DocID.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, docID string) (*domain.DocumentProfile, error)

	// Exists reports whether a profile for DocID is already stored.
	// Used by incremental runs to skip annotated documents.
	Exists(ctx context.Context, docID string) (bool, error)

	// List loads the full profile set in stable path order.
	List(ctx context.Context) ([]*domain.DocumentProfile, error)

	// RecordFailure appends an entry to the failure manifest.
	RecordFailure(ctx context.Context, failure FailedFile) error

	// Failures returns the accumulated failure manifest.
	Failures(ctx context.Context) ([]FailedFile, error)

	// Close flushes and releases resources.
	Close() error
}

// ProfileIndex is an optional fast lookup over annotated documents,
// keyed by DocID. When nil, existence checks fall back to the store.
type ProfileIndex interface {
	// Put records that a document has been annotated at the given path.
	Put(ctx context.Context, docID, relPath string) error

	// Has reports whether the document is indexed.
	Has(ctx context.Context, docID string) (bool, error)

	// Delete removes a document from the index.
	Delete(ctx context.Context, docID string) error

	// Close releases the underlying database.
	Close() error
}
