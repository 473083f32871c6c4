package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
)

func pdfProfile(docID string, mutate func(*domain.DocumentProfile)) *domain.DocumentProfile {
	p := &domain.DocumentProfile{
		DocID:       docID,
		FileType:    domain.FileTypePDF,
		FilePath:    "finance/" + docID + ".pdf",
		Layout:      domain.LayoutSingle,
		AnnotatedAt: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

func seedStore(t *testing.T, profiles ...*domain.DocumentProfile) *memory.ProfileStore {
	t.Helper()
	store := memory.NewProfileStore()
	for _, p := range profiles {
		require.NoError(t, store.Save(context.Background(), p, p.FilePath))
	}
	return store
}

func TestAnalyse_EmptyStore(t *testing.T) {
	service := NewAnalyseService(memory.NewProfileStore())

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, analysis.TotalDocuments)
	assert.Empty(t, analysis.Buckets)
	// Every core combination and expected file type is a gap.
	assert.Len(t, analysis.Gaps.EmptyBuckets, len(coreStressorTags)+len(expectedFileTypes))
	assert.Len(t, analysis.Gaps.AbsentFlags, len(coreStressorTags))
}

func TestAnalyse_Counts(t *testing.T) {
	store := seedStore(t,
		pdfProfile("a", func(p *domain.DocumentProfile) {
			p.HasTable = true
			p.TableProfile = &domain.TableProfile{}
		}),
		pdfProfile("b", func(p *domain.DocumentProfile) {
			p.HasTable = true
			p.TableProfile = &domain.TableProfile{}
		}),
		pdfProfile("c", nil),
		pdfProfile("d", func(p *domain.DocumentProfile) {
			p.FileType = domain.FileTypeTXT
			p.FilePath = "notes/d.txt"
		}),
	)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{})

	require.NoError(t, err)
	assert.Equal(t, 4, analysis.TotalDocuments)
	assert.Equal(t, 3, analysis.ByFileType[domain.FileTypePDF])
	assert.Equal(t, 1, analysis.ByFileType[domain.FileTypeTXT])
	assert.Equal(t, 3, analysis.ByFolder["finance"])
	assert.Equal(t, 1, analysis.ByFolder["notes"])
	assert.Equal(t, 2, analysis.StressorHist["0"])
	assert.Equal(t, 2, analysis.StressorHist["1"])
}

func TestAnalyse_Buckets(t *testing.T) {
	store := seedStore(t,
		pdfProfile("a", func(p *domain.DocumentProfile) {
			p.HasTable = true
			p.TableProfile = &domain.TableProfile{}
		}),
		pdfProfile("b", nil),
	)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{})

	require.NoError(t, err)
	require.Len(t, analysis.Buckets, 2)
	// Canonical order: the empty stressor set sorts first.
	assert.Equal(t, "", analysis.Buckets[0].Key.StressorSet)
	assert.Equal(t, []string{"b"}, analysis.Buckets[0].DocIDs)
	assert.Equal(t, domain.StressorHasTable, analysis.Buckets[1].Key.StressorSet)
	assert.Equal(t, []string{"a"}, analysis.Buckets[1].DocIDs)
}

func TestAnalyse_Idempotent(t *testing.T) {
	store := seedStore(t,
		pdfProfile("a", func(p *domain.DocumentProfile) { p.HasImage = true }),
		pdfProfile("b", nil),
		pdfProfile("c", func(p *domain.DocumentProfile) {
			p.FileType = domain.FileTypeDoc
			p.HasFormula = true
		}),
	)
	service := NewAnalyseService(store)

	first, err := service.Analyse(context.Background(), driving.AnalyseOptions{})
	require.NoError(t, err)
	second, err := service.Analyse(context.Background(), driving.AnalyseOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyse_SparseBuckets(t *testing.T) {
	store := seedStore(t,
		pdfProfile("a", nil),
		pdfProfile("b", nil),
		pdfProfile("c", nil),
		pdfProfile("lone", func(p *domain.DocumentProfile) { p.HasImage = true }),
	)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{SparseThreshold: 3})

	require.NoError(t, err)
	require.Len(t, analysis.Gaps.SparseBuckets, 1)
	assert.Equal(t, domain.StressorHasImage, analysis.Gaps.SparseBuckets[0].StressorSet)
}

func TestAnalyse_AbsentFlags(t *testing.T) {
	store := seedStore(t,
		pdfProfile("a", func(p *domain.DocumentProfile) { p.HasImage = true }),
	)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{})

	require.NoError(t, err)
	assert.NotContains(t, analysis.Gaps.AbsentFlags, domain.StressorHasImage)
	assert.Contains(t, analysis.Gaps.AbsentFlags, domain.StressorHasFormula)
	assert.Contains(t, analysis.Gaps.AbsentFlags, domain.StressorLongTable)
}

func TestAnalyse_HighComplexity(t *testing.T) {
	store := seedStore(t,
		pdfProfile("busy", func(p *domain.DocumentProfile) {
			p.HasImage = true
			p.HasTable = true
			p.HasChart = true
			p.TableProfile = &domain.TableProfile{}
			p.ChartProfile = &domain.ChartProfile{}
		}),
		pdfProfile("plain", nil),
	)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{ComplexityThreshold: 3})

	require.NoError(t, err)
	require.Len(t, analysis.HighComplexity, 1)
	assert.Equal(t, "busy", analysis.HighComplexity[0].DocID)
}

func TestAnalyse_SamplingAdvice(t *testing.T) {
	var profiles []*domain.DocumentProfile
	for i := 0; i < 4; i++ {
		profiles = append(profiles, pdfProfile(fmt.Sprintf("t%d", i), func(p *domain.DocumentProfile) {
			p.HasTable = true
			p.TableProfile = &domain.TableProfile{}
		}))
	}
	profiles = append(profiles, pdfProfile("i0", func(p *domain.DocumentProfile) { p.HasImage = true }))
	store := seedStore(t, profiles...)
	service := NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{})

	require.NoError(t, err)
	require.Len(t, analysis.Advice, 1)
	advice := analysis.Advice[0]
	assert.Equal(t, domain.FileTypePDF, advice.FileType)
	assert.Equal(t, 5, advice.Documents)
	assert.Equal(t, 2, advice.Combinations)
	// The smallest combination holds one document, so an even draw can
	// take at most one per combination.
	assert.Equal(t, 2, advice.RecommendedQuota)
	assert.False(t, advice.NeedsReplacement)
}

func TestComboBreakdown(t *testing.T) {
	counts := map[string]int{
		"has_table":           10,
		"has_image":           10,
		"has_image+has_table": 2,
		"has_formula":         1,
	}

	top, rare := comboBreakdown(counts)

	require.Len(t, top, 4)
	// Ties break alphabetically.
	assert.Equal(t, "has_image", top[0].Combo)
	assert.Equal(t, "has_table", top[1].Combo)

	require.Len(t, rare, 2)
	assert.Equal(t, "has_formula", rare[0].Combo)
	assert.Equal(t, "has_image+has_table", rare[1].Combo)
}

func TestTopFolder(t *testing.T) {
	assert.Equal(t, "finance", topFolder("finance/q3/report.pdf"))
	assert.Equal(t, "notes", topFolder("./notes/a.txt"))
	assert.Equal(t, ".", topFolder("report.pdf"))
	assert.Equal(t, "corpus", topFolder("/data/corpus/report.pdf"))
}
