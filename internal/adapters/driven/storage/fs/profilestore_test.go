package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

func testProfile(docID string) *domain.DocumentProfile {
	return &domain.DocumentProfile{
		DocID:       docID,
		FileType:    domain.FileTypePDF,
		FilePath:    "corpus/" + docID + ".pdf",
		Layout:      domain.LayoutSingle,
		AnnotatedAt: time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestProfileStore_SaveAndGet(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	profile := testProfile("report")
	profile.HasTable = true
	profile.TableProfile = &domain.TableProfile{LongTable: true}

	require.NoError(t, store.Save(ctx, profile, "finance/report.pdf"))

	got, err := store.Get(ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, "report", got.DocID)
	assert.True(t, got.HasTable)
	require.NotNil(t, got.TableProfile)
	assert.True(t, got.TableProfile.LongTable)
	assert.True(t, profile.AnnotatedAt.Equal(got.AnnotatedAt))
}

func TestProfileStore_MirrorsFolderStructure(t *testing.T) {
	dir := t.TempDir()
	store, err := NewProfileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), testProfile("report"), "finance/q3/report.pdf"))

	_, err = os.Stat(filepath.Join(dir, "finance", "q3", "report.json"))
	assert.NoError(t, err)
}

func TestProfileStore_SaveOverwrites(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := testProfile("report")
	require.NoError(t, store.Save(ctx, first, "report.pdf"))

	second := testProfile("report")
	second.HasImage = true
	require.NoError(t, store.Save(ctx, second, "report.pdf"))

	got, err := store.Get(ctx, "report")
	require.NoError(t, err)
	assert.True(t, got.HasImage)

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestProfileStore_GetNotFound(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStore_Exists(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "report")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, testProfile("report"), "report.pdf"))

	exists, err = store.Exists(ctx, "report")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProfileStore_ListOrder(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testProfile("zeta"), "b/zeta.pdf"))
	require.NoError(t, store.Save(ctx, testProfile("alpha"), "a/alpha.pdf"))
	require.NoError(t, store.Save(ctx, testProfile("mid"), "a/mid.pdf"))

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "alpha", profiles[0].DocID)
	assert.Equal(t, "mid", profiles[1].DocID)
	assert.Equal(t, "zeta", profiles[2].DocID)
}

func TestProfileStore_Failures(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	failures, err := store.Failures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)

	require.NoError(t, store.RecordFailure(ctx, driven.FailedFile{
		Path: "corpus/broken.pdf", Error: "parse failure: truncated",
	}))
	require.NoError(t, store.RecordFailure(ctx, driven.FailedFile{
		Path: "corpus/locked.xlsx", Error: "parse failure: encrypted",
	}))

	failures, err = store.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "corpus/broken.pdf", failures[0].Path)
	assert.Equal(t, "corpus/locked.xlsx", failures[1].Path)
}

func TestProfileStore_FailureManifestNotListed(t *testing.T) {
	store, err := NewProfileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.RecordFailure(ctx, driven.FailedFile{Path: "x.pdf", Error: "bad"}))
	require.NoError(t, store.Save(ctx, testProfile("report"), "report.pdf"))

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}
