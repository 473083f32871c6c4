package reports

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
)

// sampleAnalysis builds a small but fully populated analysis value.
func sampleAnalysis() *driving.CorpusAnalysis {
	return &driving.CorpusAnalysis{
		TotalDocuments: 3,
		ByFileType:     map[domain.FileType]int{domain.FileTypePDF: 2, domain.FileTypeDoc: 1},
		ByFolder:       map[string]int{"finance": 2, "hr": 1},
		Buckets: []*domain.Bucket{
			{Key: domain.NewBucketKey(domain.FileTypeDoc, nil), DocIDs: []string{"c"}},
			{Key: domain.NewBucketKey(domain.FileTypePDF, []string{"has_table"}), DocIDs: []string{"a", "b"}},
		},
		FlagRatios: []driving.FlagRatio{
			{Flag: "has_table", TrueCount: 2, Ratio: 2.0 / 3.0},
			{Flag: "has_image", TrueCount: 1, Ratio: 1.0 / 3.0},
		},
		StressorHist: map[string]int{"0": 1, "1": 2, "2": 0, "3+": 0},
		TopCombos:    []driving.ComboCount{{Combo: "has_table", Count: 2}, {Combo: "", Count: 1}},
		RareCombos:   []driving.ComboCount{{Combo: "", Count: 1}},
		Gaps: driving.GapReport{
			AbsentFlags: []string{"has_chart"},
		},
		Advice: []driving.SamplingAdvice{
			{FileType: domain.FileTypePDF, Documents: 2, Combinations: 1, RecommendedQuota: 2},
		},
		HighComplexity: []*domain.DocumentProfile{
			{
				DocID:    "a",
				FileType: domain.FileTypePDF,
				FilePath: "finance/a.pdf",
				Layout:   domain.LayoutSingle,
				HasTable: true,
				HasImage: true,
				TableProfile: &domain.TableProfile{
					CrossPageTable: true,
				},
			},
		},
	}
}

func TestWriteAnalysis_ProducesAllArtifacts(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteAnalysis(dir, sampleAnalysis()))

	for _, name := range []string{
		SummaryFile, ByFolderFile, BucketsFile, CombosFile, GapsFile,
		AdviceFile, TagCSVFile, BucketCSVFile, ComplexityCSVFile, ReportMarkdownFile,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
}

func TestWriteAnalysis_SummaryContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAnalysis(dir, sampleAnalysis()))

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)

	var summary analysisSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.TotalDocuments)
	assert.Equal(t, 2, summary.ByFileType[domain.FileTypePDF])
	assert.Equal(t, 2, summary.StressorHist["1"])
}

func TestWriteAnalysis_BucketCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAnalysis(dir, sampleAnalysis()))

	f, err := os.Open(filepath.Join(dir, BucketCSVFile))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"file_type", "stressor_set", "count"}, records[0])
	assert.Equal(t, []string{"doc", "", "1"}, records[1])
	assert.Equal(t, []string{"pdf", "has_table", "2"}, records[2])
}

func TestWriteAnalysis_TagCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAnalysis(dir, sampleAnalysis()))

	f, err := os.Open(filepath.Join(dir, TagCSVFile))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"tag", "count", "ratio"}, records[0])
	assert.Equal(t, []string{"has_image", "1", "0.3333"}, records[1])
	assert.Equal(t, []string{"has_table", "2", "0.6667"}, records[2])

	// Rows are per-tag counts, never the stressor-count histogram.
	for _, rec := range records[1:] {
		assert.NotContains(t, []string{"0", "1", "2", "3+"}, rec[0])
	}
}

func TestWriteAnalysis_MarkdownMentionsGaps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAnalysis(dir, sampleAnalysis()))

	data, err := os.ReadFile(filepath.Join(dir, ReportMarkdownFile))
	require.NoError(t, err)

	report := string(data)
	assert.Contains(t, report, "# Corpus Analysis")
	assert.Contains(t, report, "has_chart")
	assert.Contains(t, report, "| pdf | 2 |")
}

func TestWriteAnalysis_Deterministic(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	require.NoError(t, WriteAnalysis(first, sampleAnalysis()))
	require.NoError(t, WriteAnalysis(second, sampleAnalysis()))

	a, err := os.ReadFile(filepath.Join(first, SummaryFile))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(second, SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// sampleResult builds a two-query generation result.
func sampleResult() *driving.GenerateResult {
	return &driving.GenerateResult{
		Queries: []*domain.QueryRecord{
			{
				ID:               "q_000001",
				Query:            "What values does the table on page 2 report?",
				Domain:           "hr",
				ExpectedBehavior: domain.BehaviorAnswer,
				DocAnnotation:    domain.DocAnnotation{DocID: "a", FileType: domain.FileTypePDF, Layout: domain.LayoutSingle},
				Stressors:        []string{"has_table"},
				RequiredChunks:   []string{"a#p2"},
			},
			{
				ID:               "q_000002",
				Query:            "What confidential details beyond staffing does this document reveal?",
				Domain:           "hr",
				ExpectedBehavior: domain.BehaviorRefuse,
				DocAnnotation:    domain.DocAnnotation{DocID: "b", FileType: domain.FileTypeDoc, Layout: domain.LayoutSingle},
				Stressors:        []string{"ungrounded"},
				ForbiddenChunks:  []string{"b#p1"},
			},
		},
		Plan: &domain.SamplePlan{
			Seed: 42,
			Buckets: []domain.BucketPlan{
				{Key: domain.NewBucketKey(domain.FileTypePDF, []string{"has_table"}), Quota: 1, DocIDs: []string{"a"}},
				{Key: domain.NewBucketKey(domain.FileTypeDoc, nil), Quota: 1, DocIDs: []string{"b"}},
			},
		},
		Grounded: 1,
	}
}

func TestWriteGeneration_QueriesJSONL(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteGeneration(dir, sampleResult(), driving.GenerateOptions{Domain: "hr", PerFileType: 1, QueriesPerDoc: 1, Seed: 42})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, QueriesFile))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var q domain.QueryRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &q))
	assert.Equal(t, "q_000001", q.ID)
	assert.Equal(t, domain.BehaviorAnswer, q.ExpectedBehavior)
}

func TestWriteGeneration_Manifest(t *testing.T) {
	dir := t.TempDir()

	manifest, err := WriteGeneration(dir, sampleResult(), driving.GenerateOptions{
		Domain:        "hr",
		PerFileType:   1,
		QueriesPerDoc: 1,
		Seed:          42,
		Grounding:     true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, manifest.RunID)
	assert.Equal(t, int64(42), manifest.Seed)
	assert.Equal(t, 2, manifest.QueryCount)
	assert.Equal(t, 2, manifest.SelectedDocs)
	assert.Equal(t, 1, manifest.Grounded)
	assert.True(t, manifest.Grounding)
	assert.Len(t, manifest.QueriesSHA256, checksumLen)
	assert.WithinDuration(t, time.Now().UTC(), manifest.CreatedAt, time.Minute)

	// Manifest on disk matches the returned value.
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	var onDisk Manifest
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, manifest.RunID, onDisk.RunID)
	assert.Equal(t, manifest.QueriesSHA256, onDisk.QueriesSHA256)
}

func TestWriteGeneration_ChecksumTracksContent(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	opts := driving.GenerateOptions{Domain: "hr", PerFileType: 1, QueriesPerDoc: 1, Seed: 42}

	m1, err := WriteGeneration(first, sampleResult(), opts)
	require.NoError(t, err)

	changed := sampleResult()
	changed.Queries[0].Query = "Something else entirely?"
	m2, err := WriteGeneration(second, changed, opts)
	require.NoError(t, err)

	assert.NotEqual(t, m1.QueriesSHA256, m2.QueriesSHA256)
}

func TestWriteGeneration_Stats(t *testing.T) {
	dir := t.TempDir()

	result := sampleResult()
	result.Deficits = []domain.QuotaDeficit{
		{Bucket: domain.NewBucketKey(domain.FileTypePDF, nil), Requested: 3, Available: 1, Shortfall: 2},
	}

	_, err := WriteGeneration(dir, result, driving.GenerateOptions{Domain: "hr", PerFileType: 1, QueriesPerDoc: 1})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)

	var stats runStats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 2, stats.TotalQueries)
	assert.Equal(t, 1, stats.ByBehavior[domain.BehaviorAnswer])
	assert.Equal(t, 1, stats.ByBehavior[domain.BehaviorRefuse])
	assert.Equal(t, 1, stats.ByFileType[domain.FileTypePDF])
	assert.Equal(t, 1, stats.ByStressor["has_table"])
	require.Len(t, stats.Deficits, 1)
	assert.Equal(t, 2, stats.Deficits[0].Shortfall)
}

func TestWriteInventory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, InventoryFile)

	profiles := []*domain.DocumentProfile{
		{
			DocID:    "report",
			FilePath: "finance/report.pdf",
			FileType: domain.FileTypePDF,
			Layout:   domain.LayoutSingle,
			HasTable: true,
			TableProfile: &domain.TableProfile{
				CrossPageTable: true,
			},
		},
		{
			DocID:    "notes",
			FilePath: "notes.txt",
			FileType: domain.FileTypeTXT,
			Layout:   domain.LayoutSingle,
		},
	}

	require.NoError(t, WriteInventory(path, profiles))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "doc_id", records[0][0])
	assert.Equal(t, "report", records[1][0])
	assert.Equal(t, "true", records[1][5]) // has_table
	assert.Contains(t, records[1][12], "table_profile.cross_page_table")
	assert.Equal(t, "", records[2][12])
}
