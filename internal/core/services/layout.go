package services

import (
	"context"
	"time"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// doubleLayoutRatio is the fraction of multi-column pages above which
// the whole document counts as double rather than mixed.
const doubleLayoutRatio = 0.8

// readingOrderPageRatio is the fraction of multi-column pages above
// which a PDF is flagged reading-order sensitive.
const readingOrderPageRatio = 0.3

// layoutClassifier labels column structure. The geometric strategy is
// always available; an LLM strategy may be layered on top and falls
// back to geometry on any failure. Both are total over valid input.
type layoutClassifier struct {
	llm        driven.LLMService
	llmTimeout time.Duration
}

// newLayoutClassifier creates a classifier. llm may be nil.
func newLayoutClassifier(llm driven.LLMService, llmTimeout time.Duration) *layoutClassifier {
	if llmTimeout <= 0 {
		llmTimeout = 30 * time.Second
	}
	return &layoutClassifier{llm: llm, llmTimeout: llmTimeout}
}

// classify returns the document layout, never an unknown label.
func (c *layoutClassifier) classify(ctx context.Context, ft domain.FileType, pages []domain.PageRecord, sampleText string) domain.Layout {
	if c.llm != nil {
		label, err := c.classifyLLM(ctx, ft, pages, sampleText)
		if err == nil {
			return label
		}
		logger.Warn("LLM layout classification failed, using geometric heuristic: %v", err)
	}
	return classifyGeometric(pages)
}

// classifyLLM delegates to the model with a compact summary.
func (c *layoutClassifier) classifyLLM(ctx context.Context, ft domain.FileType, pages []domain.PageRecord, sampleText string) (domain.Layout, error) {
	summary := driven.LayoutSummary{
		FileType:   ft,
		PageCount:  len(pages),
		SampleText: truncate(sampleText, 500),
	}
	for _, page := range pages {
		summary.ColumnCounts = append(summary.ColumnCounts, page.ColumnCount)
	}

	llmCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	label, err := c.llm.ClassifyLayout(llmCtx, summary)
	if err != nil {
		return "", err
	}
	if !label.IsValid() {
		return "", domain.ErrInvalidInput
	}
	return label, nil
}

// classifyGeometric derives the label from the per-page column counts:
// no multi-column pages means single, nearly all means double,
// anything in between is mixed.
func classifyGeometric(pages []domain.PageRecord) domain.Layout {
	if len(pages) == 0 {
		return domain.LayoutSingle
	}

	multi := 0
	for _, page := range pages {
		if page.MultiColumn {
			multi++
		}
	}

	switch {
	case multi == 0:
		return domain.LayoutSingle
	case float64(multi)/float64(len(pages)) >= doubleLayoutRatio:
		return domain.LayoutDouble
	default:
		return domain.LayoutMixed
	}
}

// readingOrderSensitive flags PDFs whose top-to-bottom reconstruction
// would interleave unrelated blocks: enough multi-column pages, or a
// multi-column page carrying a wide image or table spanning columns.
func readingOrderSensitive(ft domain.FileType, pages []domain.PageRecord) bool {
	if ft != domain.FileTypePDF || len(pages) == 0 {
		return false
	}

	multi := 0
	for _, page := range pages {
		if !page.MultiColumn {
			continue
		}
		multi++
		for _, img := range page.ImageRegions {
			if img.AreaFraction >= largeImageFraction {
				return true
			}
		}
		for _, tbl := range page.TableRegions {
			if tbl.AreaFraction >= largeImageFraction {
				return true
			}
		}
	}
	return float64(multi)/float64(len(pages)) >= readingOrderPageRatio
}

// truncate bounds a string to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
