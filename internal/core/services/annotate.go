package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// Ensure AnnotateService implements the interface.
var _ driving.AnnotationService = (*AnnotateService)(nil)

// defaultWorkers bounds the annotation pool when unconfigured.
const defaultWorkers = 4

// extensionTypes maps file extensions to declared file types.
var extensionTypes = map[string]domain.FileType{
	".pdf":  domain.FileTypePDF,
	".docx": domain.FileTypeDoc,
	".doc":  domain.FileTypeDoc,
	".xlsx": domain.FileTypeXLS,
	".xls":  domain.FileTypeXLS,
	".pptx": domain.FileTypePPT,
	".ppt":  domain.FileTypePPT,
	".html": domain.FileTypeHTML,
	".htm":  domain.FileTypeHTML,
	".txt":  domain.FileTypeTXT,
	".md":   domain.FileTypeMD,
}

// AnnotateService runs the per-document pipeline over a corpus.
// Documents are independent, so annotation fans out over a bounded
// worker pool; each worker owns its document's state exclusively.
type AnnotateService struct {
	parsers    driven.ParserRegistry
	store      driven.ProfileStore
	index      driven.ProfileIndex
	detector   *detector
	classifier *layoutClassifier

	// limiter throttles calls into external OCR/LLM capabilities,
	// shared across workers.
	limiter *rate.Limiter

	corpusRoot string

	mu      sync.Mutex
	skipSet map[string]struct{}
}

// AnnotateOption configures the service.
type AnnotateOption func(*AnnotateService)

// WithOCR wires an OCR capability with the given per-call timeout.
func WithOCR(ocr driven.OCRService, timeout time.Duration) AnnotateOption {
	return func(s *AnnotateService) {
		s.detector = newDetector(ocr, timeout)
	}
}

// WithLLMLayout wires an LLM layout classifier with a per-call timeout.
func WithLLMLayout(llm driven.LLMService, timeout time.Duration) AnnotateOption {
	return func(s *AnnotateService) {
		s.classifier = newLayoutClassifier(llm, timeout)
	}
}

// WithIndex wires a profile index for fast skip-existing checks.
func WithIndex(index driven.ProfileIndex) AnnotateOption {
	return func(s *AnnotateService) {
		s.index = index
	}
}

// WithRateLimit bounds external capability calls per second.
func WithRateLimit(perSecond float64) AnnotateOption {
	return func(s *AnnotateService) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewAnnotateService creates an annotation service.
func NewAnnotateService(parsers driven.ParserRegistry, store driven.ProfileStore, opts ...AnnotateOption) *AnnotateService {
	s := &AnnotateService{
		parsers:    parsers,
		store:      store,
		detector:   newDetector(nil, 0),
		classifier: newLayoutClassifier(nil, 0),
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnnotateCorpus walks the corpus and annotates every recognised
// document. Per-document failures are recorded and never abort the
// batch.
func (s *AnnotateService) AnnotateCorpus(ctx context.Context, corpusDir string, opts driving.AnnotateOptions) (*driving.AnnotateResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	s.corpusRoot = corpusDir
	if opts.SkipFailed {
		if err := s.loadSkipSet(ctx); err != nil {
			logger.Warn("could not load failure manifest: %v", err)
		}
	}

	paths, err := collectDocuments(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", corpusDir, err)
	}
	logger.Section("annotate")
	logger.Info("found %d documents under %s", len(paths), corpusDir)

	var (
		result driving.AnnotateResult
		mu     sync.Mutex
		done   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			outcome := s.annotateOne(gctx, path, opts)

			mu.Lock()
			done++
			switch outcome {
			case outcomeAnnotated:
				result.Annotated++
			case outcomeSkipped:
				result.Skipped++
			case outcomeFailed:
				result.Failed++
			}
			logger.Progress(done, len(paths), path)
			mu.Unlock()

			// Only context cancellation propagates out of a worker.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return &result, err
	}
	return &result, nil
}

type annotateOutcome int

const (
	outcomeAnnotated annotateOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// annotateOne runs the pipeline for a single document.
func (s *AnnotateService) annotateOne(ctx context.Context, path string, opts driving.AnnotateOptions) annotateOutcome {
	docID := docIDFor(path)

	if s.isSkippedFailure(path) {
		logger.Debug("skipping previously failed %s", path)
		return outcomeSkipped
	}

	if opts.SkipExisting {
		exists, err := s.profileExists(ctx, docID)
		if err == nil && exists {
			logger.Debug("skipping already annotated %s", docID)
			return outcomeSkipped
		}
	}

	profile, err := s.AnnotateFile(ctx, path)
	if err != nil {
		logger.Warn("annotate %s: %v", path, err)
		failure := driven.FailedFile{Path: path, Error: err.Error()}
		if recErr := s.store.RecordFailure(ctx, failure); recErr != nil {
			logger.Warn("record failure for %s: %v", path, recErr)
		}
		return outcomeFailed
	}

	relPath := relativeTo(s.corpusRoot, path)
	if err := s.store.Save(ctx, profile, relPath); err != nil {
		logger.Warn("save profile %s: %v", docID, err)
		return outcomeFailed
	}
	if s.index != nil {
		if err := s.index.Put(ctx, docID, relPath); err != nil {
			logger.Debug("index put %s: %v", docID, err)
		}
	}
	return outcomeAnnotated
}

// AnnotateFile runs the full pipeline for one document.
func (s *AnnotateService) AnnotateFile(ctx context.Context, path string) (*domain.DocumentProfile, error) {
	ft, ok := fileTypeFor(path)
	if !ok {
		return nil, fmt.Errorf("annotate %s: %w", path, domain.ErrUnsupportedFileType)
	}

	result, err := s.parsers.ParseWithText(ctx, path, ft)
	if err != nil {
		return nil, err
	}

	// External capability calls respect the shared rate limit.
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	sig := s.detector.detect(ctx, result.Pages)

	var features pdfFeatures
	if ft == domain.FileTypePDF {
		features = extractFeatures(result.Pages)
	}

	layout := s.classifier.classify(ctx, ft, result.Pages, result.Text)
	readingOrder := readingOrderSensitive(ft, result.Pages)

	return assembleProfile(docIDFor(path), ft, path, layout, sig, features, readingOrder)
}

// profileExists checks the index first, then the store.
func (s *AnnotateService) profileExists(ctx context.Context, docID string) (bool, error) {
	if s.index != nil {
		if ok, err := s.index.Has(ctx, docID); err == nil {
			return ok, nil
		}
	}
	return s.store.Exists(ctx, docID)
}

// loadSkipSet reads the failure manifest into the skip set.
func (s *AnnotateService) loadSkipSet(ctx context.Context) error {
	failures, err := s.store.Failures(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipSet = make(map[string]struct{}, len(failures))
	for _, f := range failures {
		s.skipSet[f.Path] = struct{}{}
	}
	return nil
}

func (s *AnnotateService) isSkippedFailure(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.skipSet[path]
	return ok
}

// collectDocuments walks the corpus tree and returns recognised file
// paths in stable lexical order.
func collectDocuments(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := fileTypeFor(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// fileTypeFor maps a path to its declared file type by extension.
func fileTypeFor(path string) (domain.FileType, bool) {
	ft, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]
	return ft, ok
}

// SupportedFile reports whether the annotation pipeline recognises the
// path's extension.
func SupportedFile(path string) bool {
	_, ok := fileTypeFor(path)
	return ok
}

// docIDFor derives the stable document identifier from the filename stem.
func docIDFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// relativeTo returns path relative to root, falling back to the base name.
func relativeTo(root, path string) string {
	if root == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}
