package parsers

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry dispatches parsing to the best parser per file type.
// Selection is by declared file type; when several parsers claim the
// same type the highest priority wins.
type Registry struct {
	byType map[domain.FileType]driven.Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[domain.FileType]driven.Parser),
	}
}

// Register adds a parser, replacing lower-priority claims on its types.
func (r *Registry) Register(parser driven.Parser) {
	for _, ft := range parser.SupportedFileTypes() {
		existing, ok := r.byType[ft]
		if ok && existing.Priority() >= parser.Priority() {
			continue
		}
		r.byType[ft] = parser
	}
}

// Parse selects a parser by file type and runs it.
func (r *Registry) Parse(ctx context.Context, path string, ft domain.FileType) ([]domain.PageRecord, error) {
	parser, ok := r.byType[ft]
	if !ok {
		return nil, fmt.Errorf("parse %s: %w", path, domain.ErrUnsupportedFileType)
	}
	return parser.Parse(ctx, path)
}

// ParseWithText runs the selected parser, surfacing document text when
// the parser supports it.
func (r *Registry) ParseWithText(ctx context.Context, path string, ft domain.FileType) (*driven.ParseResult, error) {
	parser, ok := r.byType[ft]
	if !ok {
		return nil, fmt.Errorf("parse %s: %w", path, domain.ErrUnsupportedFileType)
	}
	if tp, ok := parser.(driven.TextParser); ok {
		return tp.ParseWithText(ctx, path)
	}
	pages, err := parser.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	return &driven.ParseResult{Pages: pages}, nil
}

// SupportedFileTypes returns every registered file type in sorted order.
func (r *Registry) SupportedFileTypes() []domain.FileType {
	types := make([]domain.FileType, 0, len(r.byType))
	for ft := range r.byType {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
