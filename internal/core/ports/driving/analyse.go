package driving

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// AnalyseOptions configures corpus analysis thresholds.
type AnalyseOptions struct {
	// SparseThreshold marks buckets with fewer documents as sparse.
	SparseThreshold int

	// ComplexityThreshold marks documents with at least this many
	// stressors as high complexity.
	ComplexityThreshold int
}

// FlagRatio is the true/false split of one boolean flag over the corpus.
type FlagRatio struct {
	Flag      string  `json:"flag"`
	TrueCount int     `json:"true_count"`
	Ratio     float64 `json:"ratio"`
}

// ComboCount is the frequency of one stressor combination.
type ComboCount struct {
	Combo string `json:"combo"`
	Count int    `json:"count"`
}

// GapReport is the derived coverage-gap view of a corpus.
type GapReport struct {
	// EmptyBuckets are expected combinations with zero documents.
	EmptyBuckets []domain.BucketKey `json:"empty_buckets"`

	// SparseBuckets are below the sparse threshold.
	SparseBuckets []domain.BucketKey `json:"sparse_buckets"`

	// AbsentFlags are false for every document in the corpus.
	AbsentFlags []string `json:"absent_flags"`
}

// SamplingAdvice estimates achievable quotas per file type.
type SamplingAdvice struct {
	FileType         domain.FileType `json:"file_type"`
	Documents        int             `json:"documents"`
	Combinations     int             `json:"combinations"`
	RecommendedQuota int             `json:"recommended_quota"`
	NeedsReplacement bool            `json:"needs_replacement"`
}

// CorpusAnalysis is the full derived view of one profile set.
// Recomputing it on an unchanged set yields an identical value.
type CorpusAnalysis struct {
	TotalDocuments int                       `json:"total_documents"`
	ByFileType     map[domain.FileType]int   `json:"by_file_type"`
	ByFolder       map[string]int            `json:"by_folder"`
	Buckets        []*domain.Bucket          `json:"buckets"`
	FlagRatios     []FlagRatio               `json:"flag_ratios"`
	StressorHist   map[string]int            `json:"stressor_histogram"`
	TopCombos      []ComboCount              `json:"top_combos"`
	RareCombos     []ComboCount              `json:"rare_combos"`
	Gaps           GapReport                 `json:"gaps"`
	Advice         []SamplingAdvice          `json:"sampling_advice"`
	HighComplexity []*domain.DocumentProfile `json:"high_complexity_docs"`
}

// AnalysisService computes bucket structure and coverage statistics
// over a stored profile set. Pure over its input: never mutates
// profiles, idempotent for a fixed set and options.
type AnalysisService interface {
	Analyse(ctx context.Context, opts AnalyseOptions) (*CorpusAnalysis, error)
}
