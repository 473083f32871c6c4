package reports

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
)

// Generation artifact filenames.
const (
	QueriesFile  = "queries.jsonl"
	StatsFile    = "stats.json"
	ManifestFile = "manifest.json"
)

// checksumLen truncates the queries checksum for readability.
const checksumLen = 16

// Manifest records everything needed to reproduce a generation run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	Seed             int64  `json:"seed"`
	Domain           string `json:"domain"`
	PerFileType      int    `json:"per_file_type"`
	QueriesPerDoc    int    `json:"queries_per_doc"`
	AllowReplacement bool   `json:"allow_replacement"`
	Grounding        bool   `json:"grounding"`

	QueryCount     int `json:"query_count"`
	SelectedDocs   int `json:"selected_docs"`
	Grounded       int `json:"grounded"`
	DeficitCount   int `json:"deficit_count"`
	TotalShortfall int `json:"total_shortfall"`

	// QueriesSHA256 is the truncated hex digest of queries.jsonl.
	QueriesSHA256 string `json:"queries_sha256"`
}

// runStats is the stats.json shape.
type runStats struct {
	TotalQueries int                             `json:"total_queries"`
	ByBehavior   map[domain.ExpectedBehavior]int `json:"by_behavior"`
	ByFileType   map[domain.FileType]int         `json:"by_file_type"`
	ByStressor   map[string]int                  `json:"by_stressor"`
	Grounded     int                             `json:"grounded"`
	Deficits     []domain.QuotaDeficit           `json:"deficits"`
}

// WriteGeneration renders the query set and its companions into dir
// and returns the manifest it wrote.
func WriteGeneration(dir string, result *driving.GenerateResult, opts driving.GenerateOptions) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	for _, q := range result.Queries {
		line, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("marshal query %s: %w", q.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	queriesPath := filepath.Join(dir, QueriesFile)
	if err := os.WriteFile(queriesPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", QueriesFile, err)
	}

	digest := sha256.Sum256(buf.Bytes())
	checksum := hex.EncodeToString(digest[:])[:checksumLen]

	stats := buildStats(result)
	if err := writeJSON(filepath.Join(dir, StatsFile), stats); err != nil {
		return nil, err
	}

	shortfall := 0
	for _, d := range result.Deficits {
		shortfall += d.Shortfall
	}

	manifest := &Manifest{
		RunID:            uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		Seed:             result.Plan.Seed,
		Domain:           opts.Domain,
		PerFileType:      opts.PerFileType,
		QueriesPerDoc:    opts.QueriesPerDoc,
		AllowReplacement: opts.AllowReplacement,
		Grounding:        opts.Grounding,
		QueryCount:       len(result.Queries),
		SelectedDocs:     result.Plan.TotalSelected(),
		Grounded:         result.Grounded,
		DeficitCount:     len(result.Deficits),
		TotalShortfall:   shortfall,
		QueriesSHA256:    checksum,
	}
	if err := writeJSON(filepath.Join(dir, ManifestFile), manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

// buildStats aggregates per-behavior, per-file-type and per-stressor
// counts over the emitted queries.
func buildStats(result *driving.GenerateResult) runStats {
	stats := runStats{
		TotalQueries: len(result.Queries),
		ByBehavior:   make(map[domain.ExpectedBehavior]int),
		ByFileType:   make(map[domain.FileType]int),
		ByStressor:   make(map[string]int),
		Grounded:     result.Grounded,
		Deficits:     result.Deficits,
	}
	if stats.Deficits == nil {
		stats.Deficits = []domain.QuotaDeficit{}
	}

	for _, q := range result.Queries {
		stats.ByBehavior[q.ExpectedBehavior]++
		stats.ByFileType[q.DocAnnotation.FileType]++
		for _, tag := range q.Stressors {
			stats.ByStressor[tag]++
		}
	}
	return stats
}
