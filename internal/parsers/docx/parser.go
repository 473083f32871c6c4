// Package docx parses Word documents (OOXML).
//
// Word exposes logical document order, not page geometry, so the whole
// body is reported as one synthetic page. Table row/column counts come
// from the document XML and feed the complex-table policy; cross-page
// features stay undefined for this format.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
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

// Parser handles DOCX documents.
type Parser struct{}

// New creates a new DOCX parser.
func New() *Parser {
	return &Parser{}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeDoc}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Parse extracts structural primitives from a DOCX file.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText extracts the single body page and the document text.
func (p *Parser) ParseWithText(_ context.Context, path string) (*driven.ParseResult, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrParseFailure, err)
	}
	defer func() { _ = reader.Close() }()

	content, err := readArchiveFile(&reader.Reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml of %s: %w: %v", path, domain.ErrParseFailure, err)
	}

	body, err := parseBody(content)
	if err != nil {
		return nil, fmt.Errorf("parse document.xml of %s: %w: %v", path, domain.ErrParseFailure, err)
	}

	page := domain.PageRecord{
		Number:  1,
		TextLen: utf8.RuneCountInString(body.text),
	}

	for _, tbl := range body.tables {
		page.TableRegions = append(page.TableRegions, domain.TableRegion{
			Rows:        tbl.rows,
			Cols:        tbl.cols,
			HeaderCells: tbl.header,
		})
	}
	media := readMediaParts(&reader.Reader, "word/media/")
	for i := 0; i < body.images; i++ {
		region := domain.ImageRegion{}
		if i < len(media) {
			region.Data = media[i]
		}
		page.ImageRegions = append(page.ImageRegions, region)
	}
	page.FormulaCount = body.formulas
	for i := 0; i < countChartParts(&reader.Reader); i++ {
		page.ChartRegions = append(page.ChartRegions, domain.ChartRegion{Signature: "embedded"})
	}

	return &driven.ParseResult{
		Pages: []domain.PageRecord{page},
		Text:  body.text,
	}, nil
}

// readArchiveFile returns the contents of one file in the archive.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s missing from archive", name)
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
		data, err := readArchiveFile(reader, file.Name)
		if err != nil {
			continue
		}
		parts = append(parts, data)
	}
	return parts
}

// countChartParts counts embedded chart XML parts.
func countChartParts(reader *zip.Reader) int {
	count := 0
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "word/charts/chart") && strings.HasSuffix(file.Name, ".xml") {
			count++
		}
	}
	return count
}

// tableInfo summarises one w:tbl element.
type tableInfo struct {
	rows   int
	cols   int
	header []string
}

// bodyInfo is everything extracted from word/document.xml.
type bodyInfo struct {
	text     string
	tables   []tableInfo
	images   int
	formulas int
}

// parseBody walks the document XML with a streaming decoder. The OOXML
// body mixes paragraphs, tables, drawings and OMML math, so token
// walking beats a fixed unmarshal schema here.
func parseBody(content []byte) (*bodyInfo, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(content)))

	info := &bodyInfo{}
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
			case "drawing", "pict":
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
