package driven

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// OCRService probes ambiguous visual content. This is an optional
// capability: when nil, detection keeps the geometric heuristic verdict.
//
// Implementations may include:
//   - Mock (returns the heuristic verdict unchanged)
//   - Vision-model backed (cloud API)
type OCRService interface {
	// DetectElements inspects an image region and reports whether it
	// renders a table and how much text it carries. Called only for
	// large images with no structured table on the same page.
	DetectElements(ctx context.Context, region domain.ImageRegion) (OCRVerdict, error)

	// ExtractText returns text recognised inside an image region.
	ExtractText(ctx context.Context, region domain.ImageRegion) (string, error)

	// Name identifies the backend for logs and manifests.
	Name() string

	// Close releases resources.
	Close() error
}

// OCRVerdict is the outcome of a visual element probe.
type OCRVerdict struct {
	// IsTable is true when the region renders tabular content.
	IsTable bool

	// TextLen is the recognised character count.
	TextLen int
}
