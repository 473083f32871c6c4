// Package plaintext parses txt and markdown documents.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interfaces.
var (
	_ driven.Parser     = (*Parser)(nil)
	_ driven.TextParser = (*Parser)(nil)
)

// Parser handles plain text and markdown documents.
// Text formats have no page geometry and no row/column introspection,
// so the only signal they produce is extractable text length. Table
// and image flags are never set for them.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// SupportedFileTypes returns the file types this parser handles.
func (p *Parser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeTXT, domain.FileTypeMD}
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 5 // Fallback parser
}

// Parse reads the file and emits one synthetic page carrying the text length.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.PageRecord, error) {
	result, err := p.ParseWithText(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Pages, nil
}

// ParseWithText reads the file and also surfaces its text for grounding.
func (p *Parser) ParseWithText(_ context.Context, path string) (*driven.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, domain.ErrParseFailure, err)
	}

	text := string(data)
	page := domain.PageRecord{
		Number:  1,
		TextLen: utf8.RuneCountInString(text),
	}

	return &driven.ParseResult{
		Pages: []domain.PageRecord{page},
		Text:  text,
	}, nil
}
