// Package store provides the storage layer for the MCQ tutor: vector
// collections of textbook chunks plus a relational registry of indexed
// datasets.
package store

import (
	"context"
)

// Chunk is one textbook excerpt with its embedding.
type Chunk struct {
	// ID is assigned by the vector store on insert.
	ID string
	// DatasetID is the indexed source this chunk came from.
	DatasetID string
	// Chapter is the textbook chapter this chunk belongs to, if known.
	Chapter string
	// Content is the excerpt text.
	Content string
	// Embedding is the dense vector for Content.
	Embedding []float32
}

// SearchResult is one similarity-search hit.
type SearchResult struct {
	ID        string
	DatasetID string
	Chapter   string
	Content   string
	// Score is the vector distance; lower is closer under L2.
	Score float32
}

// CollectionConfig describes a per-subject vector collection.
type CollectionConfig struct {
	Name        string
	Description string
	Dimension   int
}

// VectorStore abstracts the vector database holding textbook chunks.
type VectorStore interface {
	// CreateCollection creates the collection if it does not exist.
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert stores chunks and returns their assigned IDs.
	Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error)

	// Search returns the topK chunks closest to the embedding.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the number of stored chunks.
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
