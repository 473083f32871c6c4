// Package pdf parses PDF documents using the tabula toolkit.
//
// PDF is the only format exposing raw geometric placement, so it is
// also the only format producing column counts, area fractions and
// header signatures for cross-page feature extraction.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// Ensure Parser implements the interfaces.
var (
	_ driven.Parser     = (*Parser)(nil)
	_ driven.TextParser = (*Parser)(nil)
)

// Default page geometry when the media box is unreadable (US Letter).
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// groundingTextCap bounds the text returned for query grounding.
const groundingTextCap = 20000

// Parser handles PDF documents.
type Parser struct {
	detector tables.Detector
	columns  *layout.ColumnDetector
}

// New creates a new PDF parser with the geometric table detector.
func New() *Parser {
	detector := tables.GetDetector("geometric")
	_ = detector.Configure(tables.Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
		UseLines:           true,
		UseWhitespace:      true,
		MaxCellGap:         5.0,
		AlignmentTolerance: 2.0,
		DetectMergedCells:  true,
	})
	return &Parser{
		detector: detector,
		columns:  layout.NewColumnDetector(),
	}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Parse extracts per-page structural primitives from a PDF.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText extracts pages and the document text for grounding.
func (p *Parser) ParseWithText(ctx context.Context, path string) (*driven.ParseResult, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrParseFailure, err)
	}
	defer func() { _ = r.Close() }()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count %s: %w: %v", path, domain.ErrParseFailure, err)
	}

	pages := make([]domain.PageRecord, 0, count)
	var textBuilder strings.Builder

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w: %v", i+1, path, domain.ErrParseFailure, err)
		}

		width, err := page.Width()
		if err != nil || width <= 0 {
			width = defaultPageWidth
		}
		height, err := page.Height()
		if err != nil || height <= 0 {
			height = defaultPageHeight
		}

		fragments, err := r.ExtractTextFragments(page)
		if err != nil {
			// Content stream damage on one page should not sink the
			// document; the page simply carries no text signals.
			logger.Warn("text extraction failed on page %d of %s: %v", i+1, path, err)
			fragments = nil
		}

		record := domain.PageRecord{
			Number: i + 1,
			Width:  width,
			Height: height,
		}

		pageText := joinFragments(fragments)
		record.TextLen = utf8.RuneCountInString(pageText)
		if textBuilder.Len() < groundingTextCap {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n\n")
		}

		cl := p.columns.Detect(fragments, width, height)
		record.ColumnCount = cl.ColumnCount()
		record.MultiColumn = cl.IsMultiColumn()

		record.TableRegions = p.detectTables(fragments, width, height)

		images, err := r.ExtractPageImages(page)
		if err == nil {
			record.ImageRegions = imageRegions(images, width, height)
		}

		record.ChartRegions = detectCharts(fragments, record.ImageRegions, width)
		record.FormulaCount = countFormulas(fragments)

		pages = append(pages, record)
	}

	return &driven.ParseResult{
		Pages: pages,
		Text:  textBuilder.String(),
	}, nil
}

// detectTables runs the geometric detector over the page fragments.
func (p *Parser) detectTables(fragments []text.TextFragment, width, height float64) []domain.TableRegion {
	if len(fragments) == 0 {
		return nil
	}

	mp := model.NewPage(width, height)
	mp.RawText = convertFragments(fragments)

	detected, err := p.detector.Detect(mp)
	if err != nil {
		return nil
	}

	pageArea := width * height
	regions := make([]domain.TableRegion, 0, len(detected))
	for _, t := range detected {
		region := domain.TableRegion{
			Rows:        t.RowCount(),
			Cols:        t.ColCount(),
			HeaderCells: headerCells(t),
		}
		if pageArea > 0 {
			region.AreaFraction = t.BBox.Area() / pageArea
		}
		regions = append(regions, region)
	}
	return regions
}

// headerCells returns the trimmed first-row cell texts.
func headerCells(t *model.Table) []string {
	if len(t.Rows) == 0 {
		return nil
	}
	cells := make([]string, 0, len(t.Rows[0]))
	for _, c := range t.Rows[0] {
		if s := strings.TrimSpace(c.Text); s != "" {
			cells = append(cells, s)
		}
	}
	return cells
}

// convertFragments maps extractor fragments onto model fragments so
// the table detector can consume them.
func convertFragments(fragments []text.TextFragment) []model.TextFragment {
	result := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		result[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return result
}

// joinFragments concatenates fragment texts in extraction order.
func joinFragments(fragments []text.TextFragment) string {
	if len(fragments) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, f := range fragments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// chartCaptionPrefixes mark fragments that caption a chart or figure.
var chartCaptionPrefixes = []string{"figure", "fig.", "chart", "graph", "图"}

// defaultChartAreaFraction stands in when a caption has no image body
// to measure (vector-drawn charts leave no XObject behind).
const defaultChartAreaFraction = 0.2

// detectCharts finds chart regions by their captions. When the page
// carries extracted images, the largest one is taken as the chart body
// and supplies the area fraction. The signature is the horizontal
// third the caption sits in, coarse enough to match the same chart
// continuing on the next page.
func detectCharts(fragments []text.TextFragment, images []domain.ImageRegion, pageWidth float64) []domain.ChartRegion {
	bodyArea := defaultChartAreaFraction
	for _, img := range images {
		if img.AreaFraction > bodyArea {
			bodyArea = img.AreaFraction
		}
	}

	var regions []domain.ChartRegion
	for _, f := range fragments {
		lower := strings.ToLower(strings.TrimSpace(f.Text))
		for _, prefix := range chartCaptionPrefixes {
			if strings.HasPrefix(lower, prefix) {
				regions = append(regions, domain.ChartRegion{
					AreaFraction: bodyArea,
					Signature:    positionBucket(f.X, pageWidth),
				})
				break
			}
		}
	}
	return regions
}

// positionBucket maps an x coordinate to a coarse horizontal bucket.
func positionBucket(x, pageWidth float64) string {
	if pageWidth <= 0 {
		return "center"
	}
	switch {
	case x < pageWidth/3:
		return "left"
	case x < 2*pageWidth/3:
		return "center"
	default:
		return "right"
	}
}

// mathRunes are symbols that rarely appear outside formulas.
const mathRunes = "∑∫∏√≈≤≥≠±×÷∂∇∞αβγδλμσπΩθφ"

// countFormulas counts fragments dense in mathematical symbols.
func countFormulas(fragments []text.TextFragment) int {
	count := 0
	for _, f := range fragments {
		mathCount := 0
		for _, r := range f.Text {
			if strings.ContainsRune(mathRunes, r) {
				mathCount++
			}
		}
		if mathCount >= 2 {
			count++
		}
	}
	return count
}

// imageRegions converts extracted page images to regions, carrying the
// decoded bytes through for downstream vision analysis.
func imageRegions(images []reader.PageImage, pageWidth, pageHeight float64) []domain.ImageRegion {
	var regions []domain.ImageRegion
	for _, img := range images {
		regions = append(regions, domain.ImageRegion{
			Width:        img.Width,
			Height:       img.Height,
			AreaFraction: imageAreaFraction(img.Width, img.Height, pageWidth, pageHeight),
			Data:         img.Data,
		})
	}
	return regions
}

// imageAreaFraction estimates page coverage from pixel dimensions,
// assuming roughly 1pt per pixel at natural placement, capped at 1.
func imageAreaFraction(pxWidth, pxHeight int, pageWidth, pageHeight float64) float64 {
	pageArea := pageWidth * pageHeight
	if pageArea <= 0 {
		return 0
	}
	fraction := float64(pxWidth) * float64(pxHeight) / pageArea
	if fraction > 1 {
		return 1
	}
	return fraction
}
