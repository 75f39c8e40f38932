package biz

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
)

func newIndexerFixture(t *testing.T) (*Indexer, *store.MemoryStore, *store.DatasetStore) {
	t.Helper()

	vs := store.NewMemoryStore()
	datasets, err := store.NewDatasetStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = datasets.Close() })

	ix, err := NewIndexer(&fakeEmbedder{dim: 16}, vs, datasets, IndexerConfig{
		ChunkSize:        200,
		ChunkOverlap:     20,
		CollectionPrefix: "textbook",
		EmbeddingDim:     16,
		DataDir:          t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(ix.Close)

	return ix, vs, datasets
}

func writeTextbook(t *testing.T, dir string) {
	t.Helper()
	content := strings.Repeat("Plant growth requires mineral nutrition and sunlight for photosynthesis. ", 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter7.md"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.pdf"), []byte("binary"), 0o644))
}

func TestIndexerIndexDirectory(t *testing.T) {
	ix, vs, datasets := newIndexerFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeTextbook(t, dir)

	ds, err := ix.IndexDirectory(ctx, model.SubjectBiology, dir)
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, model.DatasetStatusIndexed, ds.Status)
	assert.Greater(t, ds.ChunkNum, 0)

	count, err := vs.GetStats(ctx, "textbook_biology")
	require.NoError(t, err)
	assert.Equal(t, int64(ds.ChunkNum), count)

	stored, err := datasets.Get(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusIndexed, stored.Status)
	assert.Equal(t, ds.ChunkNum, stored.ChunkNum)
}

func TestIndexerChunksAreSearchable(t *testing.T) {
	ix, vs, _ := newIndexerFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeTextbook(t, dir)

	_, err := ix.IndexDirectory(ctx, model.SubjectBiology, dir)
	require.NoError(t, err)

	embedder := &fakeEmbedder{dim: 16}
	query, err := embedder.EmbedSingle(ctx, "photosynthesis")
	require.NoError(t, err)

	results, err := vs.Search(ctx, "textbook_biology", query, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "mineral nutrition")
	assert.Equal(t, "Plant Growth and Mineral Nutrition", results[0].Chapter)
}

func TestIndexerDeduplicatesByHash(t *testing.T) {
	ix, _, _ := newIndexerFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeTextbook(t, dir)

	first, err := ix.IndexDirectory(ctx, model.SubjectBiology, dir)
	require.NoError(t, err)

	second, err := ix.IndexDirectory(ctx, model.SubjectBiology, dir)
	assert.ErrorIs(t, err, ErrDuplicateDataset)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	// Same content under another subject is not a duplicate.
	_, err = ix.IndexDirectory(ctx, model.SubjectChemistry, dir)
	require.NoError(t, err)
}

func TestIndexerEmptyDirectory(t *testing.T) {
	ix, _, _ := newIndexerFixture(t)

	_, err := ix.IndexDirectory(context.Background(), model.SubjectBiology, t.TempDir())
	assert.Error(t, err)
}

func TestIndexerMissingDirectory(t *testing.T) {
	ix, _, _ := newIndexerFixture(t)

	_, err := ix.IndexDirectory(context.Background(), model.SubjectBiology, "/nonexistent/path")
	assert.Error(t, err)
}
