package driving

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// AnnotateOptions configures one batch annotation run.
type AnnotateOptions struct {
	// Workers bounds the annotation worker pool.
	Workers int

	// SkipExisting skips documents that already have a stored profile.
	SkipExisting bool

	// SkipFailed skips paths recorded in the failure manifest of a
	// previous run.
	SkipFailed bool
}

// AnnotateResult summarises a batch annotation run.
type AnnotateResult struct {
	// Annotated is the count of successfully profiled documents.
	Annotated int

	// Skipped is the count of documents skipped by incremental checks.
	Skipped int

	// Failed is the count of documents recorded in the failure manifest.
	Failed int
}

// AnnotationService runs the per-document annotation pipeline over a corpus.
type AnnotationService interface {
	// AnnotateCorpus walks the corpus directory, annotates every
	// recognised document and persists the profiles. Per-document
	// failures never abort the batch.
	AnnotateCorpus(ctx context.Context, corpusDir string, opts AnnotateOptions) (*AnnotateResult, error)

	// AnnotateFile annotates a single document and returns its profile.
	AnnotateFile(ctx context.Context, path string) (*domain.DocumentProfile, error)
}
