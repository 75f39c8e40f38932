package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/syllabus"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
	mcqopts "github.com/redfire-io/pcb-tutor/pkg/options/mcq"
)

// SubjectInfo describes one supported subject for API listings.
type SubjectInfo struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Chapters []string `json:"chapters"`
}

// Service is the MCQ tutor use-case layer.
type Service interface {
	// Generate produces count questions on topic for subject.
	Generate(ctx context.Context, subject, topic string, count int) (*model.GenerateResult, error)

	// IndexFromURL downloads and indexes a textbook source.
	IndexFromURL(ctx context.Context, subject, url string) (*model.Dataset, error)

	// IndexDirectory indexes text files under a local directory.
	IndexDirectory(ctx context.Context, subject, dir string) (*model.Dataset, error)

	// ListDatasets lists indexed datasets, optionally filtered by subject.
	ListDatasets(ctx context.Context, subject string) ([]model.Dataset, error)

	// Subjects lists the supported subjects and their chapters.
	Subjects() []SubjectInfo

	// Stats reports pipeline counters and per-subject chunk counts.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// ClearCache drops all cached results and returns how many were removed.
	ClearCache(ctx context.Context) (int64, error)

	// CacheSize returns the number of cached results, or -1 when caching is
	// disabled.
	CacheSize(ctx context.Context) int64

	// Close releases service resources.
	Close(ctx context.Context) error
}

type service struct {
	retriever   *Retriever
	validator   *TopicValidator
	detector    *ChapterDetector
	generator   *Generator
	indexer     *Indexer
	cache       *QueryCache
	datasets    *store.DatasetStore
	vectorStore store.VectorStore
	opts        *mcqopts.Options
}

// NewService assembles the pipeline. cache may be nil to disable caching.
func NewService(
	retriever *Retriever,
	validator *TopicValidator,
	detector *ChapterDetector,
	generator *Generator,
	indexer *Indexer,
	cache *QueryCache,
	datasets *store.DatasetStore,
	vectorStore store.VectorStore,
	opts *mcqopts.Options,
) Service {
	return &service{
		retriever:   retriever,
		validator:   validator,
		detector:    detector,
		generator:   generator,
		indexer:     indexer,
		cache:       cache,
		datasets:    datasets,
		vectorStore: vectorStore,
		opts:        opts,
	}
}

// NormalizeCount applies the default for a missing or out-of-range count.
func (s *service) NormalizeCount(count int) int {
	if count < 1 || count > s.opts.MaxQuestionCount {
		return s.opts.DefaultQuestionCount
	}
	return count
}

func (s *service) Generate(ctx context.Context, rawSubject, topic string, count int) (*model.GenerateResult, error) {
	subject, ok := model.ParseSubject(rawSubject)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, rawSubject)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidSubject)
	}
	count = s.NormalizeCount(count)

	valid, err := s.validator.Validate(ctx, subject, topic)
	if err != nil {
		return nil, err
	}
	if !valid {
		metrics.GetMetrics().RecordGeneration(false, ErrSubjectMismatch)
		return nil, fmt.Errorf("%w: %q is not a %s topic", ErrSubjectMismatch, topic, subject.Title())
	}

	retrieved, err := s.retriever.Retrieve(ctx, subject, topic)
	if err != nil {
		metrics.GetMetrics().RecordGeneration(false, err)
		return nil, err
	}
	if len(retrieved.Context) < s.opts.MinContextChars {
		metrics.GetMetrics().RecordGeneration(false, ErrNoContent)
		return nil, fmt.Errorf("%w: %q", ErrNoContent, topic)
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(subject, topic, textutil.ShortHash(retrieved.Context), count)
		cached, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			logger.Warnw("Cache lookup failed", "error", err.Error())
		} else if cached != nil {
			cached.Cached = true
			metrics.GetMetrics().RecordGeneration(true, nil)
			logger.Infow("Serving cached questions",
				"subject", string(subject),
				"topic", topic,
				"count", count,
			)
			return cached, nil
		}
	}

	chapter, err := s.detector.Detect(ctx, subject, topic, retrieved.Context)
	if err != nil {
		metrics.GetMetrics().RecordGeneration(false, err)
		return nil, err
	}

	raw, items, err := s.generator.Generate(ctx, subject, topic, chapter, retrieved.Context, count)
	if err != nil {
		metrics.GetMetrics().RecordGeneration(false, err)
		return nil, err
	}

	result := &model.GenerateResult{
		MCQs:    raw,
		Items:   items,
		Subject: subject,
		Chapter: chapter,
		Sources: retrieved.Sources,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result); err != nil {
			logger.Warnw("Cache store failed", "error", err.Error())
		}
	}

	metrics.GetMetrics().RecordGeneration(false, nil)
	return result, nil
}

func (s *service) IndexFromURL(ctx context.Context, rawSubject, url string) (*model.Dataset, error) {
	subject, ok := model.ParseSubject(rawSubject)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, rawSubject)
	}
	return s.indexer.IndexFromURL(ctx, subject, url)
}

func (s *service) IndexDirectory(ctx context.Context, rawSubject, dir string) (*model.Dataset, error) {
	subject, ok := model.ParseSubject(rawSubject)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, rawSubject)
	}
	return s.indexer.IndexDirectory(ctx, subject, dir)
}

func (s *service) ListDatasets(ctx context.Context, rawSubject string) ([]model.Dataset, error) {
	var subject model.Subject
	if rawSubject != "" {
		parsed, ok := model.ParseSubject(rawSubject)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, rawSubject)
		}
		subject = parsed
	}
	return s.datasets.List(ctx, subject)
}

func (s *service) Subjects() []SubjectInfo {
	infos := make([]SubjectInfo, 0, len(model.Subjects))
	for _, subject := range model.Subjects {
		infos = append(infos, SubjectInfo{
			Name:     string(subject),
			Title:    subject.Title(),
			Chapters: syllabus.Chapters(subject),
		})
	}
	return infos
}

func (s *service) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := metrics.GetMetrics().Stats()

	collections := make(map[string]interface{}, len(model.Subjects))
	for _, subject := range model.Subjects {
		count, err := s.vectorStore.GetStats(ctx, s.retriever.CollectionName(subject))
		if err != nil {
			collections[string(subject)] = map[string]interface{}{"error": err.Error()}
			continue
		}
		collections[string(subject)] = map[string]interface{}{"chunks": count}
	}
	stats["collections"] = collections
	stats["cache_size"] = s.CacheSize(ctx)

	providers := make(map[string]interface{}, 2)
	if s.retriever != nil && s.retriever.embedder != nil {
		providers["embedding"] = s.retriever.embedder.Name()
	}
	if s.generator != nil && s.generator.chat != nil {
		providers["chat"] = s.generator.chat.Name()
	}
	stats["providers"] = providers

	return stats, nil
}

func (s *service) ClearCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Clear(ctx)
}

func (s *service) CacheSize(ctx context.Context) int64 {
	if s.cache == nil {
		return -1
	}
	size, err := s.cache.Size(ctx)
	if err != nil {
		return -1
	}
	return size
}

func (s *service) Close(ctx context.Context) error {
	if s.indexer != nil {
		s.indexer.Close()
	}
	if s.vectorStore != nil {
		return s.vectorStore.Close(ctx)
	}
	return nil
}
