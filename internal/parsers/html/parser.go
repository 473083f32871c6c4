// Package html parses HTML documents.
//
// HTML exposes logical order, so the whole document is one page.
// Tables are counted from markup; the first table's tr/td structure
// supplies the row and column counts for the complex-table policy.
package html

import (
	"context"
	"fmt"
	stdhtml "html"
	"os"
	"regexp"
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

// Parser handles HTML documents.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeHTML}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	tableTag      = regexp.MustCompile(`(?is)<table[^>]*>(.*?)</table>`)
	rowTag        = regexp.MustCompile(`(?i)<tr[\s>]`)
	cellTag       = regexp.MustCompile(`(?i)<t[dh][\s>]`)
	headerCellTag = regexp.MustCompile(`(?is)<th[^>]*>(.*?)</th>`)
	imgTag        = regexp.MustCompile(`(?i)<img[\s>]`)
	mathTag       = regexp.MustCompile(`(?i)<math[\s>]`)
	canvasTag     = regexp.MustCompile(`(?i)<(canvas|svg)[\s>]`)
	firstRowTag   = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
)

// Parse extracts structural primitives from an HTML file.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText extracts the single page and the stripped text.
func (p *Parser) ParseWithText(_ context.Context, path string) (*driven.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrParseFailure, err)
	}
	content := string(data)

	text := stripHTML(content)
	page := domain.PageRecord{
		Number:  1,
		TextLen: utf8.RuneCountInString(text),
	}

	for _, match := range tableTag.FindAllStringSubmatch(content, -1) {
		body := match[1]
		rows := len(rowTag.FindAllString(body, -1))
		cols := 0
		if first := firstRowTag.FindStringSubmatch(body); first != nil {
			cols = len(cellTag.FindAllString(first[1], -1))
		}
		region := domain.TableRegion{Rows: rows, Cols: cols}
		for _, th := range headerCellTag.FindAllStringSubmatch(body, -1) {
			if s := strings.TrimSpace(stdhtml.UnescapeString(allTags.ReplaceAllString(th[1], ""))); s != "" {
				region.HeaderCells = append(region.HeaderCells, s)
			}
		}
		page.TableRegions = append(page.TableRegions, region)
	}

	for range imgTag.FindAllString(content, -1) {
		page.ImageRegions = append(page.ImageRegions, domain.ImageRegion{})
	}
	page.FormulaCount = len(mathTag.FindAllString(content, -1))
	for range canvasTag.FindAllString(content, -1) {
		page.ChartRegions = append(page.ChartRegions, domain.ChartRegion{Signature: "inline"})
	}

	return &driven.ParseResult{
		Pages: []domain.PageRecord{page},
		Text:  text,
	}, nil
}

// stripHTML removes markup and extracts readable text content.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = allTags.ReplaceAllString(content, " ")
	content = stdhtml.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
