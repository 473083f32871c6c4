// Package pptx parses PowerPoint decks (OOXML).
//
// Each slide is one page. Slides expose logical order only, so
// cross-page features stay undefined for this format.
package pptx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interfaces.
var (
	_ driven.Parser     = (*Parser)(nil)
	_ driven.TextParser = (*Parser)(nil)
)

// Parser handles PPTX decks.
type Parser struct{}

// New creates a new PPTX parser.
func New() *Parser {
	return &Parser{}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePPT}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Parse extracts structural primitives, one page per slide.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText extracts slides and the deck text for grounding.
func (p *Parser) ParseWithText(ctx context.Context, path string) (*driven.ParseResult, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrParseFailure, err)
	}
	defer func() { _ = reader.Close() }()

	slides := slideFiles(&reader.Reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides in %s: %w", path, domain.ErrParseFailure)
	}

	charts := countChartParts(&reader.Reader)
	media := readMediaParts(&reader.Reader, "ppt/media/")
	mediaIdx := 0

	var pages []domain.PageRecord
	var textBuilder strings.Builder

	for i, file := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := readAll(file)
		if err != nil {
			return nil, fmt.Errorf("slide %d of %s: %w: %v", i+1, path, domain.ErrParseFailure, err)
		}

		slide, err := parseSlide(content)
		if err != nil {
			return nil, fmt.Errorf("slide %d of %s: %w: %v", i+1, path, domain.ErrParseFailure, err)
		}

		page := domain.PageRecord{
			Number:  i + 1,
			TextLen: utf8.RuneCountInString(slide.text),
		}
		for _, tbl := range slide.tables {
			page.TableRegions = append(page.TableRegions, domain.TableRegion{
				Rows:        tbl.rows,
				Cols:        tbl.cols,
				HeaderCells: tbl.header,
			})
		}
		for j := 0; j < slide.images; j++ {
			region := domain.ImageRegion{}
			if mediaIdx < len(media) {
				region.Data = media[mediaIdx]
				mediaIdx++
			}
			page.ImageRegions = append(page.ImageRegions, region)
		}
		page.FormulaCount = slide.formulas
		if i == 0 {
			for j := 0; j < charts; j++ {
				page.ChartRegions = append(page.ChartRegions, domain.ChartRegion{Signature: "embedded"})
			}
		}

		textBuilder.WriteString(slide.text)
		textBuilder.WriteString("\n\n")
		pages = append(pages, page)
	}

	return &driven.ParseResult{
		Pages: pages,
		Text:  strings.TrimSpace(textBuilder.String()),
	}, nil
}

// slideFiles returns the slide parts in deck order.
func slideFiles(reader *zip.Reader) []*zip.File {
	var slides []*zip.File
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			slides = append(slides, file)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})
	return slides
}

// slideNumber extracts N from ppt/slides/slideN.xml.
func slideNumber(name string) int {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// countChartParts counts embedded chart XML parts.
func countChartParts(reader *zip.Reader) int {
	count := 0
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/charts/chart") && strings.HasSuffix(file.Name, ".xml") {
			count++
		}
	}
	return count
}

// readMediaParts returns the raw bytes of embedded media files under
// the given archive prefix, in archive order. Read failures skip the
// part rather than failing the parse.
func readMediaParts(reader *zip.Reader, prefix string) [][]byte {
	var parts [][]byte
	for _, file := range reader.File {
		if !strings.HasPrefix(file.Name, prefix) {
			continue
		}
		data, err := readAll(file)
		if err != nil {
			continue
		}
		parts = append(parts, data)
	}
	return parts
}

// readAll returns the contents of one archive member.
func readAll(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// tableInfo summarises one a:tbl element.
type tableInfo struct {
	rows   int
	cols   int
	header []string
}

// slideInfo is everything extracted from one slide part.
type slideInfo struct {
	text     string
	tables   []tableInfo
	images   int
	formulas int
}

// parseSlide walks the slide XML with a streaming decoder, the same
// approach the docx parser takes for the document body.
func parseSlide(content []byte) (*slideInfo, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(content)))

	info := &slideInfo{}
	var textBuilder strings.Builder

	var table *tableInfo
	inFirstRow := false
	rowCells := 0
	var cellText strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				info.tables = append(info.tables, tableInfo{})
				table = &info.tables[len(info.tables)-1]
			case "tr":
				if table != nil {
					table.rows++
					inFirstRow = table.rows == 1
					rowCells = 0
				}
			case "tc":
				if table != nil {
					rowCells++
					cellText.Reset()
				}
			case "pic":
				info.images++
			case "oMath", "oMathPara":
				info.formulas++
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tbl":
				table = nil
			case "tr":
				if table != nil && rowCells > table.cols {
					table.cols = rowCells
				}
				inFirstRow = false
			case "tc":
				if table != nil && inFirstRow {
					if s := strings.TrimSpace(cellText.String()); s != "" {
						table.header = append(table.header, s)
					}
				}
			case "p":
				textBuilder.WriteByte('\n')
			}
		case xml.CharData:
			textBuilder.Write(el)
			if table != nil && inFirstRow {
				cellText.Write(el)
			}
		}
	}

	info.text = strings.TrimSpace(textBuilder.String())
	return info, nil
}
