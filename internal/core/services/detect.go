package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// imageTextThreshold is the extractable-text length above which an
// image-bearing document counts as image/text mixed.
const imageTextThreshold = 100

// largeImageFraction marks an image region big enough to plausibly
// render a table when no structured table sits on the same page.
const largeImageFraction = 0.35

// elementSignals are the per-document boolean signals derived from the
// parsed page sequence.
type elementSignals struct {
	hasImage        bool
	hasTable        bool
	hasImageTable   bool
	hasComplexTable bool
	hasFormula      bool
	hasChart        bool
	imageTextMixed  bool
}

// detector normalises per-page primitives into boolean signals,
// delegating ambiguous image regions to an optional OCR capability.
type detector struct {
	ocr        driven.OCRService
	ocrTimeout time.Duration
}

// newDetector creates a detector. ocr may be nil.
func newDetector(ocr driven.OCRService, ocrTimeout time.Duration) *detector {
	if ocrTimeout <= 0 {
		ocrTimeout = 30 * time.Second
	}
	return &detector{ocr: ocr, ocrTimeout: ocrTimeout}
}

// detect walks the page records and accumulates document signals.
func (d *detector) detect(ctx context.Context, pages []domain.PageRecord) elementSignals {
	var sig elementSignals

	totalText := 0
	for _, page := range pages {
		totalText += page.TextLen

		if len(page.ImageRegions) > 0 {
			sig.hasImage = true
		}
		if len(page.TableRegions) > 0 {
			sig.hasTable = true
		}
		if len(page.ChartRegions) > 0 {
			sig.hasChart = true
		}
		if page.FormulaCount > 0 {
			sig.hasFormula = true
		}

		for _, tbl := range page.TableRegions {
			if tbl.IsComplex() {
				sig.hasComplexTable = true
			}
		}

		// A large image with no structured table on the same page is
		// likely an image-rendered table. OCR confirms when available.
		if len(page.TableRegions) == 0 {
			for _, img := range page.ImageRegions {
				if img.AreaFraction < largeImageFraction {
					continue
				}
				if d.probeImageTable(ctx, img) {
					sig.hasImageTable = true
					break
				}
			}
		}
	}

	sig.imageTextMixed = sig.hasImage && totalText > imageTextThreshold
	return sig
}

// probeImageTable asks the OCR capability whether a large image region
// renders a table. Without OCR, or on timeout, the geometric verdict
// stands: a large lone image counts as an image table.
func (d *detector) probeImageTable(ctx context.Context, img domain.ImageRegion) bool {
	if d.ocr == nil {
		return true
	}

	probeCtx, cancel := context.WithTimeout(ctx, d.ocrTimeout)
	defer cancel()

	verdict, err := d.ocr.DetectElements(probeCtx, img)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("OCR probe timed out, keeping heuristic verdict: %v", domain.ErrDetectionTimeout)
		} else {
			logger.Debug("OCR probe failed, keeping heuristic verdict: %v", err)
		}
		return true
	}
	return verdict.IsTable
}
