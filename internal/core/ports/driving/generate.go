package driving

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// BehaviorMix is the target distribution over expected behaviors.
// Weights are normalised internally; a zero value falls back to the
// default mix.
type BehaviorMix struct {
	Answer           float64
	Partial          float64
	Refuse           float64
	AskClarification float64
}

// GenerateOptions configures one query generation run.
type GenerateOptions struct {
	// PerFileType is the sample quota per file type.
	PerFileType int

	// QueriesPerDoc multiplies each selected document into this many
	// query records. Minimum 1.
	QueriesPerDoc int

	// AllowReplacement permits with-replacement sampling when a bucket
	// is smaller than its quota share.
	AllowReplacement bool

	// Seed drives every random choice in the run.
	Seed int64

	// Domain is stamped on every query record.
	Domain string

	// Grounding substitutes topics extracted from document text into
	// templates instead of generic placeholders.
	Grounding bool

	// Mix is the expected-behavior target distribution.
	Mix BehaviorMix
}

// GenerateResult summarises a generation run for the manifest.
type GenerateResult struct {
	Queries  []*domain.QueryRecord
	Plan     *domain.SamplePlan
	Deficits []domain.QuotaDeficit

	// Grounded counts queries whose topic came from document text.
	Grounded int
}

// GenerationService plans a balanced sample over the stored profile
// set and synthesizes evaluation queries from it. Fully deterministic
// for a fixed profile set, options and seed.
type GenerationService interface {
	Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error)
}
