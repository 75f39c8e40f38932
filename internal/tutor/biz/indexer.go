package biz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/docutil"
	"github.com/redfire-io/pcb-tutor/internal/pkg/syllabus"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
	"github.com/redfire-io/pcb-tutor/pkg/pool"
)

// embedBatchSize is the number of chunks embedded per provider call.
const embedBatchSize = 32

// textExtensions are the file types picked up when indexing a directory.
var textExtensions = []string{".md", ".txt"}

// IndexerConfig holds chunking and collection parameters.
type IndexerConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	CollectionPrefix string
	EmbeddingDim     int
	DataDir          string
}

// Indexer ingests textbook material: it chunks files, tags chunks with
// their chapter, embeds them through a worker pool and stores them in the
// per-subject vector collection. Indexed sources are registered in the
// dataset store and deduplicated by content hash.
type Indexer struct {
	embedder    llm.EmbeddingProvider
	vectorStore store.VectorStore
	datasets    *store.DatasetStore
	workers     *pool.Pool
	config      IndexerConfig
}

// NewIndexer creates an Indexer with its own embedding worker pool.
func NewIndexer(embedder llm.EmbeddingProvider, vs store.VectorStore, datasets *store.DatasetStore, config IndexerConfig) (*Indexer, error) {
	workers, err := pool.NewPool("embedder", pool.EmbeddingConfig())
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	return &Indexer{
		embedder:    embedder,
		vectorStore: vs,
		datasets:    datasets,
		workers:     workers,
		config:      config,
	}, nil
}

// Close releases the embedding worker pool.
func (ix *Indexer) Close() {
	if ix.workers != nil {
		ix.workers.Release()
	}
}

// IndexFromURL downloads a source (a text file or a ZIP of text files) and
// indexes it for the subject.
func (ix *Indexer) IndexFromURL(ctx context.Context, subject model.Subject, url string) (*model.Dataset, error) {
	workDir := filepath.Join(ix.config.DataDir, "downloads", ulid.Make().String())
	if err := docutil.EnsureDir(workDir); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		name = "dataset"
	}
	archive := filepath.Join(workDir, name)

	logger.Infow("Downloading dataset", "subject", string(subject), "url", url)
	if err := docutil.DownloadFile(ctx, url, archive); err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}

	dir := workDir
	if strings.EqualFold(filepath.Ext(archive), ".zip") {
		dir = filepath.Join(workDir, "extracted")
		if err := docutil.ExtractZip(archive, dir); err != nil {
			return nil, fmt.Errorf("extract dataset: %w", err)
		}
	}

	return ix.indexDir(ctx, subject, dir, url)
}

// IndexDirectory indexes every text file under dir for the subject.
func (ix *Indexer) IndexDirectory(ctx context.Context, subject model.Subject, dir string) (*model.Dataset, error) {
	if !docutil.DirExists(dir) {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}
	return ix.indexDir(ctx, subject, dir, dir)
}

func (ix *Indexer) indexDir(ctx context.Context, subject model.Subject, dir, source string) (*model.Dataset, error) {
	files, err := docutil.FindFiles(dir, textExtensions)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no text files found under %s", dir)
	}

	var combined strings.Builder
	contents := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		contents = append(contents, string(data))
		combined.Write(data)
	}
	hash := textutil.HashString(combined.String())

	if existing, err := ix.datasets.FindByHash(ctx, subject, hash); err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	} else if existing != nil {
		logger.Infow("Dataset already indexed",
			"subject", string(subject),
			"dataset_id", existing.ID,
			"hash", hash,
		)
		return existing, ErrDuplicateDataset
	}

	dataset := &model.Dataset{
		ID:      ulid.Make().String(),
		Subject: string(subject),
		Source:  source,
		Hash:    hash,
		Status:  model.DatasetStatusPending,
	}
	if err := ix.datasets.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("register dataset: %w", err)
	}

	chunkCount, err := ix.indexContents(ctx, subject, dataset.ID, contents)
	if err != nil {
		_ = ix.datasets.SetStatus(ctx, dataset.ID, model.DatasetStatusFailed, 0, err.Error())
		metrics.GetMetrics().RecordIndexing(0, 0, err)
		return nil, err
	}

	if err := ix.datasets.SetStatus(ctx, dataset.ID, model.DatasetStatusIndexed, chunkCount, ""); err != nil {
		return nil, fmt.Errorf("finalize dataset: %w", err)
	}
	metrics.GetMetrics().RecordIndexing(1, chunkCount, nil)

	dataset.Status = model.DatasetStatusIndexed
	dataset.ChunkNum = chunkCount

	logger.Infow("Dataset indexed",
		"subject", string(subject),
		"dataset_id", dataset.ID,
		"files", len(files),
		"chunks", chunkCount,
	)
	return dataset, nil
}

func (ix *Indexer) indexContents(ctx context.Context, subject model.Subject, datasetID string, contents []string) (int, error) {
	collection := fmt.Sprintf("%s_%s", ix.config.CollectionPrefix, subject)
	if err := ix.vectorStore.CreateCollection(ctx, &store.CollectionConfig{
		Name:        collection,
		Description: fmt.Sprintf("Class 12 %s textbook chunks", subject.Title()),
		Dimension:   ix.config.EmbeddingDim,
	}); err != nil {
		return 0, fmt.Errorf("create collection: %w", err)
	}

	var chunks []*store.Chunk
	for _, content := range contents {
		for _, text := range textutil.SplitIntoChunks(content, ix.config.ChunkSize, ix.config.ChunkOverlap) {
			chapter, _ := syllabus.MatchChapter(subject, "", text)
			chunks = append(chunks, &store.Chunk{
				DatasetID: datasetID,
				Chapter:   chapter,
				Content:   text,
			})
		}
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no indexable content after chunking")
	}

	if err := ix.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if _, err := ix.vectorStore.Insert(ctx, collection, chunks); err != nil {
		return 0, fmt.Errorf("insert chunks: %w", err)
	}
	return len(chunks), nil
}

// embedChunks fills in the Embedding field of every chunk, batching calls
// through the worker pool.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []*store.Chunk) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		err := ix.workers.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			}

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			began := time.Now()
			embeddings, err := ix.embedder.Embed(ctx, texts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embed batch: %w", err)
				}
				mu.Unlock()
				return
			}
			if len(embeddings) != len(batch) {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embed batch: got %d embeddings for %d texts", len(embeddings), len(batch))
				}
				mu.Unlock()
				return
			}
			for i := range batch {
				batch[i].Embedding = embeddings[i]
			}

			logger.Debugw("Batch embedded", "size", len(batch), "elapsed", time.Since(began).String())
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit embed batch: %w", err)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}
