package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
)

// mockParserRegistry fabricates page records per path and can be told
// to fail specific documents.
type mockParserRegistry struct {
	failPaths map[string]bool
	pages     []domain.PageRecord
}

func (m *mockParserRegistry) Register(_ driven.Parser) {}

func (m *mockParserRegistry) Parse(ctx context.Context, path string, ft domain.FileType) ([]domain.PageRecord, error) {
	res, err := m.ParseWithText(ctx, path, ft)
	if err != nil {
		return nil, err
	}
	return res.Pages, nil
}

func (m *mockParserRegistry) ParseWithText(_ context.Context, path string, _ domain.FileType) (*driven.ParseResult, error) {
	if m.failPaths[filepath.Base(path)] {
		return nil, fmt.Errorf("open %s: %w: truncated file", path, domain.ErrParseFailure)
	}
	pages := m.pages
	if pages == nil {
		pages = []domain.PageRecord{{Number: 1, Width: 612, Height: 792, TextLen: 200}}
	}
	return &driven.ParseResult{Pages: pages, Text: "sample document text"}, nil
}

func (m *mockParserRegistry) SupportedFileTypes() []domain.FileType { return nil }

// mockIndex records Put calls.
type mockIndex struct {
	entries map[string]string
}

func newMockIndex() *mockIndex { return &mockIndex{entries: make(map[string]string)} }

func (m *mockIndex) Put(_ context.Context, docID, relPath string) error {
	m.entries[docID] = relPath
	return nil
}

func (m *mockIndex) Has(_ context.Context, docID string) (bool, error) {
	_, ok := m.entries[docID]
	return ok, nil
}

func (m *mockIndex) Delete(_ context.Context, docID string) error {
	delete(m.entries, docID)
	return nil
}

func (m *mockIndex) Close() error { return nil }

func writeCorpus(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	}
	return dir
}

func TestAnnotateFile_UnsupportedType(t *testing.T) {
	service := NewAnnotateService(&mockParserRegistry{}, memory.NewProfileStore())

	_, err := service.AnnotateFile(context.Background(), "archive.zip")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestAnnotateFile_BuildsProfile(t *testing.T) {
	registry := &mockParserRegistry{pages: []domain.PageRecord{
		{Number: 1, Width: 612, Height: 792, TextLen: 300,
			TableRegions: []domain.TableRegion{{Rows: 5, Cols: 3, AreaFraction: 0.2}}},
	}}
	service := NewAnnotateService(registry, memory.NewProfileStore())

	profile, err := service.AnnotateFile(context.Background(), "corpus/report.pdf")

	require.NoError(t, err)
	assert.Equal(t, "report", profile.DocID)
	assert.Equal(t, domain.FileTypePDF, profile.FileType)
	assert.True(t, profile.HasTable)
	require.NotNil(t, profile.TableProfile)
	assert.Equal(t, domain.LayoutSingle, profile.Layout)
}

func TestAnnotateCorpus_CountsAndFailures(t *testing.T) {
	dir := writeCorpus(t, "a.pdf", "b.txt", "bad.pdf", "notes/c.md")
	registry := &mockParserRegistry{failPaths: map[string]bool{"bad.pdf": true}}
	store := memory.NewProfileStore()
	service := NewAnnotateService(registry, store)

	result, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{Workers: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Annotated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Failed)

	profiles, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 3)

	failures, err := store.Failures(context.Background())
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Path, "bad.pdf")
	assert.Contains(t, failures[0].Error, "parse failure")
}

func TestAnnotateCorpus_IgnoresUnknownAndHidden(t *testing.T) {
	dir := writeCorpus(t, "a.pdf", "skip.zip", ".cache/hidden.pdf")
	service := NewAnnotateService(&mockParserRegistry{}, memory.NewProfileStore())

	result, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Annotated)
}

func TestAnnotateCorpus_SkipExisting(t *testing.T) {
	dir := writeCorpus(t, "a.pdf", "b.pdf")
	store := memory.NewProfileStore()
	service := NewAnnotateService(&mockParserRegistry{}, store)

	first, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Annotated)

	second, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Annotated)
	assert.Equal(t, 2, second.Skipped)
}

func TestAnnotateCorpus_SkipFailed(t *testing.T) {
	dir := writeCorpus(t, "bad.pdf", "good.pdf")
	registry := &mockParserRegistry{failPaths: map[string]bool{"bad.pdf": true}}
	store := memory.NewProfileStore()
	service := NewAnnotateService(registry, store)

	first, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Failed)

	// A rerun with SkipFailed set does not retry the broken document.
	registry.failPaths = nil
	second, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{
		SkipExisting: true,
		SkipFailed:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, 2, second.Skipped)
}

func TestAnnotateCorpus_IndexUpdated(t *testing.T) {
	dir := writeCorpus(t, "a.pdf")
	index := newMockIndex()
	service := NewAnnotateService(&mockParserRegistry{}, memory.NewProfileStore(), WithIndex(index))

	_, err := service.AnnotateCorpus(context.Background(), dir, driving.AnnotateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "a.pdf", index.entries["a"])
}

func TestAnnotateCorpus_CancelledContext(t *testing.T) {
	dir := writeCorpus(t, "a.pdf", "b.pdf")
	service := NewAnnotateService(&mockParserRegistry{}, memory.NewProfileStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.AnnotateCorpus(ctx, dir, driving.AnnotateOptions{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want domain.FileType
		ok   bool
	}{
		{"a.pdf", domain.FileTypePDF, true},
		{"A.PDF", domain.FileTypePDF, true},
		{"a.docx", domain.FileTypeDoc, true},
		{"a.doc", domain.FileTypeDoc, true},
		{"a.xlsx", domain.FileTypeXLS, true},
		{"a.pptx", domain.FileTypePPT, true},
		{"a.htm", domain.FileTypeHTML, true},
		{"a.md", domain.FileTypeMD, true},
		{"a.zip", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ft, ok := fileTypeFor(tt.path)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, ft)
			}
		})
	}
}

func TestDocIDFor(t *testing.T) {
	assert.Equal(t, "report", docIDFor("corpus/finance/report.pdf"))
	assert.Equal(t, "v1.2-notes", docIDFor("v1.2-notes.txt"))
	assert.Equal(t, "README", docIDFor("README"))
}
