package biz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
	mcqopts "github.com/redfire-io/pcb-tutor/pkg/options/mcq"
)

type serviceFixture struct {
	svc      Service
	chat     *fakeChat
	vs       *store.MemoryStore
	datasets *store.DatasetStore
}

func newServiceFixture(t *testing.T, cache *QueryCache) *serviceFixture {
	t.Helper()

	opts := mcqopts.NewOptions()
	opts.Store = mcqopts.StoreMemory
	opts.EmbeddingDim = 16
	opts.ChunkSize = 200
	opts.ChunkOverlap = 20

	chat := &fakeChat{}
	embedder := &fakeEmbedder{dim: 16}
	vs := store.NewMemoryStore()

	datasets, err := store.NewDatasetStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = datasets.Close() })

	indexer, err := NewIndexer(embedder, vs, datasets, IndexerConfig{
		ChunkSize:        opts.ChunkSize,
		ChunkOverlap:     opts.ChunkOverlap,
		CollectionPrefix: opts.CollectionPrefix,
		EmbeddingDim:     opts.EmbeddingDim,
		DataDir:          t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(indexer.Close)

	ctx := context.Background()
	for _, subject := range model.Subjects {
		require.NoError(t, vs.CreateCollection(ctx, &store.CollectionConfig{
			Name:      fmt.Sprintf("%s_%s", opts.CollectionPrefix, subject),
			Dimension: opts.EmbeddingDim,
		}))
	}

	// Seed biology with chunks the retriever can hit.
	chunks := []*store.Chunk{
		{Chapter: "Plant Growth and Mineral Nutrition", Content: "Plant growth requires mineral nutrition, auxins and sunlight. Photosynthesis converts light energy into chemical energy stored in glucose."},
		{Chapter: "Respiration and Circulation", Content: "Cellular respiration oxidises glucose to release energy as ATP inside mitochondria of plant and animal cells."},
	}
	for _, c := range chunks {
		emb, err := embedder.EmbedSingle(ctx, c.Content)
		require.NoError(t, err)
		c.Embedding = emb
	}
	_, err = vs.Insert(ctx, fmt.Sprintf("%s_biology", opts.CollectionPrefix), chunks)
	require.NoError(t, err)

	svc := NewService(
		NewRetriever(embedder, vs, opts.CollectionPrefix, opts.TopK),
		NewTopicValidator(chat, true),
		NewChapterDetector(chat),
		NewGenerator(chat, opts.ContextCharLimit),
		indexer,
		cache,
		datasets,
		vs,
		opts,
	)
	return &serviceFixture{svc: svc, chat: chat, vs: vs, datasets: datasets}
}

func TestServiceGenerate(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.chat.responses = []string{"YES", sampleMCQOutput}

	result, err := f.svc.Generate(context.Background(), "biology", "photosynthesis", 2)
	require.NoError(t, err)
	assert.Equal(t, model.SubjectBiology, result.Subject)
	assert.Equal(t, "Plant Growth and Mineral Nutrition", result.Chapter)
	assert.Contains(t, result.MCQs, "Q1.")
	assert.Len(t, result.Items, 2)
	assert.NotEmpty(t, result.Sources)
	assert.False(t, result.Cached)

	// Validation plus generation; keyword scoring resolved the chapter.
	assert.Equal(t, 2, f.chat.callCount())
}

func TestServiceGenerateInvalidSubject(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), "astrology", "horoscopes", 5)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestServiceGenerateEmptyTopic(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.svc.Generate(context.Background(), "biology", "", 5)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestServiceGenerateTopicMismatch(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.chat.responses = []string{"NO"}

	_, err := f.svc.Generate(context.Background(), "biology", "electrochemistry", 5)
	assert.ErrorIs(t, err, ErrSubjectMismatch)
}

func TestServiceGenerateNoContent(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.chat.responses = []string{"YES"}

	// Physics collection exists but is empty.
	_, err := f.svc.Generate(context.Background(), "physics", "optics", 5)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestServiceGenerateNormalizesCount(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.chat.responses = []string{"YES", sampleMCQOutput}

	_, err := f.svc.Generate(context.Background(), "biology", "photosynthesis", 0)
	require.NoError(t, err)
	assert.Contains(t, f.chat.lastCall().prompt, "Generate exactly 5 multiple-choice questions")

	f.chat.responses = []string{"YES", sampleMCQOutput}
	_, err = f.svc.Generate(context.Background(), "biology", "photosynthesis", 99)
	require.NoError(t, err)
	assert.Contains(t, f.chat.lastCall().prompt, "Generate exactly 5 multiple-choice questions")
}

func TestServiceGenerateUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewQueryCache(client, time.Hour, "mcq:")

	f := newServiceFixture(t, cache)
	f.chat.responses = []string{"YES", sampleMCQOutput, "YES"}

	ctx := context.Background()
	first, err := f.svc.Generate(ctx, "biology", "photosynthesis", 2)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 2, f.chat.callCount())

	second, err := f.svc.Generate(ctx, "biology", "photosynthesis", 2)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.MCQs, second.MCQs)
	// Only revalidation hit the model; generation was served from cache.
	assert.Equal(t, 3, f.chat.callCount())

	size := f.svc.CacheSize(ctx)
	assert.Equal(t, int64(1), size)

	deleted, err := f.svc.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestServiceSubjects(t *testing.T) {
	f := newServiceFixture(t, nil)

	subjects := f.svc.Subjects()
	require.Len(t, subjects, 3)
	assert.Equal(t, "biology", subjects[0].Name)
	assert.Equal(t, "Biology", subjects[0].Title)
	assert.Len(t, subjects[0].Chapters, 15)
	assert.Len(t, subjects[1].Chapters, 16)
	assert.Len(t, subjects[2].Chapters, 16)
}

func TestServiceStats(t *testing.T) {
	f := newServiceFixture(t, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)

	collections, ok := stats["collections"].(map[string]interface{})
	require.True(t, ok)
	bio, ok := collections["biology"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(2), bio["chunks"])
	assert.Equal(t, int64(-1), stats["cache_size"])

	providers, ok := stats["providers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fake-embedder", providers["embedding"])
	assert.Equal(t, "fake-chat", providers["chat"])
}

func TestServiceListDatasets(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.datasets.Create(ctx, &model.Dataset{
		ID: "01ABC", Subject: "biology", Source: "ncert.zip", Hash: "h1", Status: model.DatasetStatusIndexed,
	}))

	list, err := f.svc.ListDatasets(ctx, "biology")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.ListDatasets(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListDatasets(ctx, "alchemy")
	assert.ErrorIs(t, err, ErrInvalidSubject)
}
