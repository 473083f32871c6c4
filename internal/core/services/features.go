package services

import (
	"strings"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// Cross-page feature thresholds. Fixed policy, applied only to PDFs
// because only PDF parsing has a stable page-boundary concept.
const (
	longTableMinPages      = 3
	crossPageTableMinPages = 2
	crossPageChartMinPages = 2
	tableDominantFraction  = 0.6
	headerOverlapMin       = 0.5
)

// pdfFeatures are the stateful cross-page results for one document.
type pdfFeatures struct {
	longTable      bool
	crossPageTable bool
	tableDominant  bool
	crossPageChart bool
}

// extractFeatures walks the page sequence in order and derives the
// continuation and dominance features.
func extractFeatures(pages []domain.PageRecord) pdfFeatures {
	var f pdfFeatures

	runLen := 0
	var prev *domain.TableRegion
	totalTableArea := 0.0

	for i := range pages {
		page := &pages[i]
		for _, tbl := range page.TableRegions {
			totalTableArea += tbl.AreaFraction
		}

		cur := dominantTable(page.TableRegions)
		switch {
		case cur == nil:
			runLen = 0
			prev = nil
		case prev != nil && sameTable(prev, cur):
			runLen++
		default:
			runLen = 1
		}
		prev = cur

		if runLen >= crossPageTableMinPages {
			f.crossPageTable = true
		}
		if runLen >= longTableMinPages {
			f.longTable = true
		}
	}

	if len(pages) > 0 && totalTableArea/float64(len(pages)) > tableDominantFraction {
		f.tableDominant = true
	}

	f.crossPageChart = chartContinues(pages)
	return f
}

// dominantTable picks the largest table region on a page, the one a
// continuation would carry over the page break.
func dominantTable(regions []domain.TableRegion) *domain.TableRegion {
	var best *domain.TableRegion
	for i := range regions {
		if best == nil || regions[i].AreaFraction > best.AreaFraction {
			best = &regions[i]
		}
	}
	return best
}

// sameTable decides whether b continues a onto the next page.
// Continuation means an equal column count plus either a half-or-more
// header-cell overlap, or a headerless region, which is how repeated
// table bodies usually render after the first page.
func sameTable(a, b *domain.TableRegion) bool {
	if a.Cols != b.Cols || a.Cols == 0 {
		return false
	}
	if len(b.HeaderCells) == 0 || len(a.HeaderCells) == 0 {
		return true
	}
	return headerOverlap(a.HeaderCells, b.HeaderCells) >= headerOverlapMin
}

// headerOverlap computes the fraction of a's header cells present in
// b's, case-folded and trimmed.
func headerOverlap(a, b []string) float64 {
	if len(a) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, cell := range b {
		set[normaliseCell(cell)] = struct{}{}
	}
	matched := 0
	for _, cell := range a {
		if _, ok := set[normaliseCell(cell)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(a))
}

func normaliseCell(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// chartContinues reports whether a chart signature repeats on
// consecutive pages.
func chartContinues(pages []domain.PageRecord) bool {
	runLen := 0
	prev := ""
	for _, page := range pages {
		sig := firstChartSignature(page.ChartRegions)
		switch {
		case sig == "":
			runLen = 0
		case sig == prev && runLen > 0:
			runLen++
		default:
			runLen = 1
		}
		prev = sig

		if runLen >= crossPageChartMinPages {
			return true
		}
	}
	return false
}

func firstChartSignature(regions []domain.ChartRegion) string {
	if len(regions) == 0 {
		return ""
	}
	return regions[0].Signature
}
