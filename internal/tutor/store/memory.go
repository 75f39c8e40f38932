package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force L2 search.
// It serves tests and single-node development setups where running Milvus
// is not worth the weight.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	nextID      int64
}

type memoryCollection struct {
	dimension int
	chunks    []*Chunk
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

// CreateCollection registers a collection. Creating an existing collection
// is a no-op, matching Milvus semantics.
func (s *MemoryStore) CreateCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[config.Name]; ok {
		return nil
	}
	s.collections[config.Name] = &memoryCollection{dimension: config.Dimension}
	return nil
}

// Insert stores chunks and assigns sequential IDs.
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if col.dimension > 0 && len(chunk.Embedding) != col.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(chunk.Embedding), col.dimension)
		}
		s.nextID++
		stored := *chunk
		stored.ID = fmt.Sprintf("%d", s.nextID)
		col.chunks = append(col.chunks, &stored)
		ids[i] = stored.ID
	}

	return ids, nil
}

// Search returns the topK chunks by ascending L2 distance.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	results := make([]*SearchResult, 0, len(col.chunks))
	for _, chunk := range col.chunks {
		results = append(results, &SearchResult{
			ID:        chunk.ID,
			DatasetID: chunk.DatasetID,
			Chapter:   chunk.Chapter,
			Content:   chunk.Content,
			Score:     l2Distance(embedding, chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// GetStats returns the chunk count of a collection.
func (s *MemoryStore) GetStats(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %q does not exist", collection)
	}
	return int64(len(col.chunks)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

func l2Distance(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

var _ VectorStore = (*MemoryStore)(nil)
