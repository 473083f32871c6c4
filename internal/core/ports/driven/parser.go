package driven

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// Parser extracts structural primitives from one document format.
// Implementations live in internal/parsers and are selected through a
// ParserRegistry by declared file type.
type Parser interface {
	// SupportedFileTypes returns the file types this parser handles.
	SupportedFileTypes() []domain.FileType

	// Priority orders parsers when several claim the same file type.
	// Higher wins.
	Priority() int

	// Parse reads the file and returns its pages in document order.
	// An unreadable or corrupt file yields an error wrapping
	// domain.ErrParseFailure with the path and the underlying cause.
	Parse(ctx context.Context, path string) ([]domain.PageRecord, error)
}

// ParseResult bundles a parse with the extracted plain text, used by
// the query synthesizer for content grounding.
type ParseResult struct {
	Pages []domain.PageRecord

	// Text is the concatenated extractable text, possibly truncated by
	// the parser. Empty when the format carries none.
	Text string
}

// TextParser is implemented by parsers that can also surface document
// text for grounding. Parsers without cheap text access may omit it.
type TextParser interface {
	Parser

	// ParseWithText behaves like Parse and additionally returns the
	// document's extractable text.
	ParseWithText(ctx context.Context, path string) (*ParseResult, error)
}

// ParserRegistry dispatches to the best parser for a file type.
type ParserRegistry interface {
	// Register adds a parser to the registry.
	Register(parser Parser)

	// Parse selects a parser by file type and runs it.
	// Returns domain.ErrUnsupportedFileType when nothing claims ft.
	Parse(ctx context.Context, path string, ft domain.FileType) ([]domain.PageRecord, error)

	// ParseWithText is like Parse but surfaces document text when the
	// selected parser supports it; Text is empty otherwise.
	ParseWithText(ctx context.Context, path string, ft domain.FileType) (*ParseResult, error)

	// SupportedFileTypes returns every registered file type.
	SupportedFileTypes() []domain.FileType
}
