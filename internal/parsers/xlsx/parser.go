// Package xlsx parses Excel workbooks using excelize.
//
// Each sheet is reported as one page. The used range becomes a single
// table region whose first row supplies the header cells, which keeps
// the complex-table policy comparable with the other formats.
package xlsx

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interfaces.
var (
	_ driven.Parser     = (*Parser)(nil)
	_ driven.TextParser = (*Parser)(nil)
)

// Parser handles XLSX workbooks.
type Parser struct{}

// New creates a new XLSX parser.
func New() *Parser {
	return &Parser{}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeXLS}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Parse extracts structural primitives, one page per sheet.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText extracts sheets and the workbook text for grounding.
func (p *Parser) ParseWithText(ctx context.Context, path string) (*driven.ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrParseFailure, err)
	}
	defer func() { _ = f.Close() }()

	charts, formulas := scanArchiveParts(path)

	var pages []domain.PageRecord
	var textBuilder strings.Builder

	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q of %s: %w: %v", sheet, path, domain.ErrParseFailure, err)
		}

		page := domain.PageRecord{Number: i + 1}

		textLen := 0
		maxCols := 0
		var header []string
		for rowIdx, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
			for _, cell := range row {
				textLen += utf8.RuneCountInString(cell)
				textBuilder.WriteString(cell)
				textBuilder.WriteByte(' ')
			}
			if rowIdx == 0 {
				for _, cell := range row {
					if s := strings.TrimSpace(cell); s != "" {
						header = append(header, s)
					}
				}
			}
		}
		page.TextLen = textLen

		if len(rows) > 0 && maxCols > 0 {
			page.TableRegions = []domain.TableRegion{{
				Rows:        len(rows),
				Cols:        maxCols,
				HeaderCells: header,
			}}
		}

		if cells, err := f.GetPictureCells(sheet); err == nil {
			for range cells {
				page.ImageRegions = append(page.ImageRegions, domain.ImageRegion{})
			}
		}

		// Chart and formula parts are workbook-scoped in the archive;
		// attribute them to the first sheet.
		if i == 0 {
			for j := 0; j < charts; j++ {
				page.ChartRegions = append(page.ChartRegions, domain.ChartRegion{Signature: "embedded"})
			}
			page.FormulaCount = formulas
		}

		pages = append(pages, page)
	}

	return &driven.ParseResult{
		Pages: pages,
		Text:  strings.TrimSpace(textBuilder.String()),
	}, nil
}

// scanArchiveParts counts chart parts and formula cells by scanning
// the OOXML archive directly. Errors degrade to zero counts.
func scanArchiveParts(path string) (charts, formulas int) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return 0, 0
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		switch {
		case strings.HasPrefix(file.Name, "xl/charts/chart") && strings.HasSuffix(file.Name, ".xml"):
			charts++
		case strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml"):
			formulas += countFormulaCells(file)
		}
	}
	return charts, formulas
}

// countFormulaCells counts <f> elements in one worksheet part.
func countFormulaCells(file *zip.File) int {
	rc, err := file.Open()
	if err != nil {
		return 0
	}
	defer rc.Close()

	// Worksheet parts can be large; 4MB covers the cell formulas.
	data, err := io.ReadAll(io.LimitReader(rc, 4<<20))
	if err != nil {
		return 0
	}
	content := string(data)
	return strings.Count(content, "<f>") + strings.Count(content, "<f ")
}
