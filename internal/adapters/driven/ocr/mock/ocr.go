// Package mock provides an OCR service adapter that performs no real
// recognition. It confirms the geometric verdict for every probe, so
// annotation runs behave exactly as they would with no OCR configured
// while still exercising the probe path. Useful for dry runs and tests.
package mock

import (
	"context"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.OCRService = (*Service)(nil)

// Service is a no-op OCR capability.
type Service struct{}

// New creates a new mock OCR service.
func New() *Service {
	return &Service{}
}

// DetectElements confirms the caller's heuristic. Probes only run for
// large images with no structured table nearby, where the geometric
// verdict is "image-rendered table", so the mock reports a table.
func (s *Service) DetectElements(_ context.Context, _ domain.ImageRegion) (driven.OCRVerdict, error) {
	return driven.OCRVerdict{IsTable: true}, nil
}

// ExtractText returns no text; the mock performs no recognition.
func (s *Service) ExtractText(_ context.Context, _ domain.ImageRegion) (string, error) {
	return "", nil
}

// Name identifies the backend for logs and manifests.
func (s *Service) Name() string {
	return "mock"
}

// Close releases resources.
func (s *Service) Close() error {
	return nil
}
