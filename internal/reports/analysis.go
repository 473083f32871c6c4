package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
)

// Analysis artifact filenames.
const (
	SummaryFile        = "summary.json"
	ByFolderFile       = "by_folder.json"
	BucketsFile        = "buckets.json"
	CombosFile         = "stressor_combos.json"
	GapsFile           = "gaps.json"
	AdviceFile         = "sampling_advice.json"
	TagCSVFile         = "tag_distribution.csv"
	BucketCSVFile      = "bucket_distribution.csv"
	ComplexityCSVFile  = "high_complexity_docs.csv"
	ReportMarkdownFile = "REPORT.md"
)

// analysisSummary is the summary.json shape.
type analysisSummary struct {
	TotalDocuments int                     `json:"total_documents"`
	ByFileType     map[domain.FileType]int `json:"by_file_type"`
	FlagRatios     []driving.FlagRatio     `json:"flag_ratios"`
	StressorHist   map[string]int          `json:"stressor_histogram"`
}

// comboReport is the stressor_combos.json shape.
type comboReport struct {
	Top  []driving.ComboCount `json:"top"`
	Rare []driving.ComboCount `json:"rare"`
}

// bucketRow is one buckets.json entry.
type bucketRow struct {
	FileType    domain.FileType `json:"file_type"`
	StressorSet string          `json:"stressor_set"`
	Count       int             `json:"count"`
	DocIDs      []string        `json:"doc_ids"`
}

// WriteAnalysis renders every analysis artifact into dir, creating it
// if needed. Files are overwritten; a rerun on an unchanged corpus
// produces byte-identical output.
func WriteAnalysis(dir string, analysis *driving.CorpusAnalysis) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	summary := analysisSummary{
		TotalDocuments: analysis.TotalDocuments,
		ByFileType:     analysis.ByFileType,
		FlagRatios:     analysis.FlagRatios,
		StressorHist:   analysis.StressorHist,
	}
	if err := writeJSON(filepath.Join(dir, SummaryFile), summary); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, ByFolderFile), analysis.ByFolder); err != nil {
		return err
	}

	rows := make([]bucketRow, 0, len(analysis.Buckets))
	for _, b := range analysis.Buckets {
		rows = append(rows, bucketRow{
			FileType:    b.Key.FileType,
			StressorSet: b.Key.StressorSet,
			Count:       b.Count(),
			DocIDs:      b.DocIDs,
		})
	}
	if err := writeJSON(filepath.Join(dir, BucketsFile), rows); err != nil {
		return err
	}

	combos := comboReport{Top: analysis.TopCombos, Rare: analysis.RareCombos}
	if err := writeJSON(filepath.Join(dir, CombosFile), combos); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, GapsFile), analysis.Gaps); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, AdviceFile), analysis.Advice); err != nil {
		return err
	}

	if err := writeTagCSV(filepath.Join(dir, TagCSVFile), analysis); err != nil {
		return err
	}

	if err := writeBucketCSV(filepath.Join(dir, BucketCSVFile), analysis.Buckets); err != nil {
		return err
	}

	if err := writeComplexityCSV(filepath.Join(dir, ComplexityCSVFile), analysis.HighComplexity); err != nil {
		return err
	}

	return writeMarkdownReport(filepath.Join(dir, ReportMarkdownFile), analysis)
}

// writeTagCSV writes one row per stressor tag with its true count and
// true rate, sorted by tag. The stressor-count histogram is a separate
// statistic and stays in summary.json.
func writeTagCSV(path string, analysis *driving.CorpusAnalysis) error {
	ratios := make([]driving.FlagRatio, len(analysis.FlagRatios))
	copy(ratios, analysis.FlagRatios)
	sort.Slice(ratios, func(i, j int) bool { return ratios[i].Flag < ratios[j].Flag })

	records := [][]string{{"tag", "count", "ratio"}}
	for _, fr := range ratios {
		records = append(records, []string{
			fr.Flag,
			strconv.Itoa(fr.TrueCount),
			strconv.FormatFloat(fr.Ratio, 'f', 4, 64),
		})
	}
	return writeCSV(path, records)
}

// writeBucketCSV writes file_type,stressor_set,count rows in canonical
// bucket order.
func writeBucketCSV(path string, buckets []*domain.Bucket) error {
	records := [][]string{{"file_type", "stressor_set", "count"}}
	for _, b := range buckets {
		records = append(records, []string{
			string(b.Key.FileType),
			b.Key.StressorSet,
			strconv.Itoa(b.Count()),
		})
	}
	return writeCSV(path, records)
}

// writeComplexityCSV lists high-complexity documents with their tags.
func writeComplexityCSV(path string, docs []*domain.DocumentProfile) error {
	records := [][]string{{"doc_id", "file_type", "path", "stressor_count", "stressors"}}
	for _, doc := range docs {
		stressors := doc.Stressors()
		records = append(records, []string{
			doc.DocID,
			string(doc.FileType),
			doc.FilePath,
			strconv.Itoa(len(stressors)),
			strings.Join(stressors, "+"),
		})
	}
	return writeCSV(path, records)
}

// writeMarkdownReport renders the human-readable corpus overview.
func writeMarkdownReport(path string, analysis *driving.CorpusAnalysis) error {
	var b strings.Builder

	b.WriteString("# Corpus Analysis\n\n")
	fmt.Fprintf(&b, "Documents: **%d** across **%d** buckets.\n\n",
		analysis.TotalDocuments, len(analysis.Buckets))

	b.WriteString("## Documents by file type\n\n")
	b.WriteString("| File type | Count |\n|---|---|\n")
	for _, ft := range domain.ValidFileTypes {
		if count, ok := analysis.ByFileType[ft]; ok {
			fmt.Fprintf(&b, "| %s | %d |\n", ft, count)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Stressor coverage\n\n")
	b.WriteString("| Flag | Documents | Ratio |\n|---|---|---|\n")
	for _, fr := range analysis.FlagRatios {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", fr.Flag, fr.TrueCount, fr.Ratio*100)
	}
	b.WriteString("\n")

	if len(analysis.TopCombos) > 0 {
		b.WriteString("## Most common stressor combinations\n\n")
		b.WriteString("| Combination | Documents |\n|---|---|\n")
		for _, c := range analysis.TopCombos {
			combo := c.Combo
			if combo == "" {
				combo = "(none)"
			}
			fmt.Fprintf(&b, "| %s | %d |\n", combo, c.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Coverage gaps\n\n")
	if len(analysis.Gaps.EmptyBuckets) == 0 && len(analysis.Gaps.AbsentFlags) == 0 {
		b.WriteString("No gaps detected.\n\n")
	} else {
		fmt.Fprintf(&b, "Empty buckets: %d, sparse buckets: %d.\n\n",
			len(analysis.Gaps.EmptyBuckets), len(analysis.Gaps.SparseBuckets))
		if len(analysis.Gaps.AbsentFlags) > 0 {
			fmt.Fprintf(&b, "Flags absent from the whole corpus: %s.\n\n",
				strings.Join(analysis.Gaps.AbsentFlags, ", "))
		}
	}

	if len(analysis.Advice) > 0 {
		b.WriteString("## Sampling advice\n\n")
		b.WriteString("| File type | Documents | Combinations | Recommended quota | Needs replacement |\n|---|---|---|---|---|\n")
		for _, a := range analysis.Advice {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %t |\n",
				a.FileType, a.Documents, a.Combinations, a.RecommendedQuota, a.NeedsReplacement)
		}
		b.WriteString("\n")
	}

	if len(analysis.HighComplexity) > 0 {
		fmt.Fprintf(&b, "## High-complexity documents\n\n%d documents carry enough stressors to deserve manual review; see %s.\n",
			len(analysis.HighComplexity), ComplexityCSVFile)
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// writeJSON marshals v with indentation and a trailing newline.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeCSV writes records to path, header row included.
func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return w.Error()
}
