// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// LLMService provides language model operations for layout
// classification. This is an optional service - when nil or failing,
// classification degrades to the geometric heuristic.
//
// Implementations may include:
//   - OpenAI (GPT-4 class models)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ClassifyLayout labels a document's column structure from a
	// compact per-page summary. The returned label is always one of
	// the three valid layouts; an unparseable model response is an error.
	ClassifyLayout(ctx context.Context, summary LayoutSummary) (domain.Layout, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// LayoutSummary is the compact document description sent to the model.
type LayoutSummary struct {
	// FileType names the source format.
	FileType domain.FileType

	// PageCount is the total page count.
	PageCount int

	// ColumnCounts holds the per-page detected column counts, in order.
	ColumnCounts []int

	// SampleText is a short excerpt of the document text.
	SampleText string
}
