package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// Ensure AnalyseService implements the interface.
var _ driving.AnalysisService = (*AnalyseService)(nil)

// Analysis defaults, overridable per run.
const (
	defaultSparseThreshold     = 3
	defaultComplexityThreshold = 3
	topComboLimit              = 20
	rareComboLimit             = 2
)

// expectedFileTypes are the formats a balanced corpus is expected to
// cover; their absence is a reported gap, not an error.
var expectedFileTypes = []domain.FileType{
	domain.FileTypePDF, domain.FileTypeDoc, domain.FileTypePPT, domain.FileTypeXLS,
}

// AnalyseService computes the derived bucket and gap view of a stored
// profile set. It never mutates profiles; re-running over an unchanged
// set yields an identical analysis.
type AnalyseService struct {
	store driven.ProfileStore
}

// NewAnalyseService creates an analysis service.
func NewAnalyseService(store driven.ProfileStore) *AnalyseService {
	return &AnalyseService{store: store}
}

// Analyse reads the full profile set fresh and derives the corpus view.
func (s *AnalyseService) Analyse(ctx context.Context, opts driving.AnalyseOptions) (*driving.CorpusAnalysis, error) {
	if opts.SparseThreshold <= 0 {
		opts.SparseThreshold = defaultSparseThreshold
	}
	if opts.ComplexityThreshold <= 0 {
		opts.ComplexityThreshold = defaultComplexityThreshold
	}

	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	logger.Section("analyse")
	logger.Info("analysing %d profiles", len(profiles))

	analysis := &driving.CorpusAnalysis{
		TotalDocuments: len(profiles),
		ByFileType:     make(map[domain.FileType]int),
		ByFolder:       make(map[string]int),
		StressorHist:   map[string]int{"0": 0, "1": 0, "2": 0, "3+": 0},
	}

	analysis.Buckets = BuildBuckets(profiles)

	comboCounts := make(map[string]int)
	flagTrue := make(map[string]int)

	for _, p := range profiles {
		analysis.ByFileType[p.FileType]++
		analysis.ByFolder[topFolder(p.FilePath)]++

		stressors := p.Stressors()
		switch {
		case len(stressors) == 0:
			analysis.StressorHist["0"]++
		case len(stressors) == 1:
			analysis.StressorHist["1"]++
		case len(stressors) == 2:
			analysis.StressorHist["2"]++
		default:
			analysis.StressorHist["3+"]++
		}

		if p.FileType == domain.FileTypePDF {
			key := domain.NewBucketKey(p.FileType, stressors)
			comboCounts[key.StressorSet]++
		}

		for _, tag := range stressors {
			flagTrue[tag]++
		}

		if len(stressors) >= opts.ComplexityThreshold {
			analysis.HighComplexity = append(analysis.HighComplexity, p)
		}
	}

	analysis.FlagRatios = flagRatios(flagTrue, len(profiles))
	analysis.TopCombos, analysis.RareCombos = comboBreakdown(comboCounts)
	analysis.Gaps = gapReport(analysis.Buckets, flagTrue, opts.SparseThreshold)
	analysis.Advice = samplingAdvice(analysis.Buckets)

	return analysis, nil
}

// BuildBuckets groups profiles into canonical-order buckets.
// DocIDs keep the scan order of the input profile slice.
func BuildBuckets(profiles []*domain.DocumentProfile) []*domain.Bucket {
	byKey := make(map[domain.BucketKey]*domain.Bucket)
	for _, p := range profiles {
		key := domain.NewBucketKey(p.FileType, p.Stressors())
		bucket, ok := byKey[key]
		if !ok {
			bucket = &domain.Bucket{Key: key}
			byKey[key] = bucket
		}
		bucket.DocIDs = append(bucket.DocIDs, p.DocID)
	}

	buckets := make([]*domain.Bucket, 0, len(byKey))
	for _, bucket := range byKey {
		buckets = append(buckets, bucket)
	}
	domain.SortBuckets(buckets)
	return buckets
}

// flagRatios converts true counts to sorted ratio entries.
func flagRatios(flagTrue map[string]int, total int) []driving.FlagRatio {
	tags := make([]string, 0, len(flagTrue))
	for tag := range flagTrue {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	ratios := make([]driving.FlagRatio, 0, len(tags))
	for _, tag := range tags {
		ratio := 0.0
		if total > 0 {
			ratio = float64(flagTrue[tag]) / float64(total)
		}
		ratios = append(ratios, driving.FlagRatio{
			Flag:      tag,
			TrueCount: flagTrue[tag],
			Ratio:     ratio,
		})
	}
	return ratios
}

// comboBreakdown splits combination counts into most-frequent and rare.
func comboBreakdown(counts map[string]int) (top, rare []driving.ComboCount) {
	combos := make([]driving.ComboCount, 0, len(counts))
	for combo, count := range counts {
		combos = append(combos, driving.ComboCount{Combo: combo, Count: count})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Count != combos[j].Count {
			return combos[i].Count > combos[j].Count
		}
		return combos[i].Combo < combos[j].Combo
	})

	for i, c := range combos {
		if i < topComboLimit {
			top = append(top, c)
		}
		if c.Count <= rareComboLimit {
			rare = append(rare, c)
		}
	}
	sort.Slice(rare, func(i, j int) bool { return rare[i].Combo < rare[j].Combo })
	return top, rare
}

// gapReport derives empty buckets, sparse buckets and globally-absent
// flags from the bucket structure.
func gapReport(buckets []*domain.Bucket, flagTrue map[string]int, sparseThreshold int) driving.GapReport {
	var report driving.GapReport

	present := make(map[domain.FileType]bool)
	for _, bucket := range buckets {
		present[bucket.Key.FileType] = true
		if bucket.Count() < sparseThreshold {
			report.SparseBuckets = append(report.SparseBuckets, bucket.Key)
		}
	}

	// Expected single-stressor combinations for PDF that have no
	// documents at all count as empty buckets.
	pdfCombos := make(map[string]bool)
	for _, bucket := range buckets {
		if bucket.Key.FileType == domain.FileTypePDF {
			pdfCombos[bucket.Key.StressorSet] = true
		}
	}
	for _, tag := range coreStressorTags {
		if !pdfCombos[tag] {
			report.EmptyBuckets = append(report.EmptyBuckets, domain.BucketKey{
				FileType:    domain.FileTypePDF,
				StressorSet: tag,
			})
		}
	}
	for _, ft := range expectedFileTypes {
		if !present[ft] {
			report.EmptyBuckets = append(report.EmptyBuckets, domain.BucketKey{FileType: ft})
		}
	}

	for _, tag := range coreStressorTags {
		if flagTrue[tag] == 0 {
			report.AbsentFlags = append(report.AbsentFlags, tag)
		}
	}
	return report
}

// coreStressorTags is the canonical tag universe used for gap analysis.
var coreStressorTags = []string{
	domain.StressorHasImage,
	domain.StressorHasTable,
	domain.StressorHasFormula,
	domain.StressorHasChart,
	domain.StressorImageTextMixed,
	domain.StressorReadingOrder,
	domain.StressorLongTable,
	domain.StressorCrossPageTable,
	domain.StressorTableDominant,
	domain.StressorCrossPageChart,
}

// samplingAdvice estimates per-file-type achievable quotas.
func samplingAdvice(buckets []*domain.Bucket) []driving.SamplingAdvice {
	type stats struct {
		docs   int
		combos int
		minSz  int
	}
	byType := make(map[domain.FileType]*stats)
	for _, bucket := range buckets {
		st, ok := byType[bucket.Key.FileType]
		if !ok {
			st = &stats{minSz: bucket.Count()}
			byType[bucket.Key.FileType] = st
		}
		st.docs += bucket.Count()
		st.combos++
		if bucket.Count() < st.minSz {
			st.minSz = bucket.Count()
		}
	}

	types := make([]domain.FileType, 0, len(byType))
	for ft := range byType {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	advice := make([]driving.SamplingAdvice, 0, len(types))
	for _, ft := range types {
		st := byType[ft]
		// A quota is comfortably achievable when every combination can
		// contribute its even share without replacement.
		recommended := st.minSz * st.combos
		if recommended > st.docs {
			recommended = st.docs
		}
		advice = append(advice, driving.SamplingAdvice{
			FileType:         ft,
			Documents:        st.docs,
			Combinations:     st.combos,
			RecommendedQuota: recommended,
			NeedsReplacement: st.minSz == 0 || recommended < st.combos,
		})
	}
	return advice
}

// topFolder returns the first path segment of a corpus-relative path.
func topFolder(path string) string {
	path = strings.TrimPrefix(path, "./")
	parts := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	if len(parts) <= 1 {
		return "."
	}
	// Absolute paths keep the parent directory of the file.
	if parts[0] == "" || strings.HasSuffix(parts[0], ":") {
		return parts[len(parts)-2]
	}
	return parts[0]
}
