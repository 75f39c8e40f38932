// Package biz implements the MCQ generation pipeline: retrieval, topic
// validation, chapter detection, prompt construction and caching.
package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
	"github.com/redfire-io/pcb-tutor/internal/tutor/metrics"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
)

// RetrievedContext is the outcome of a similarity search for one topic.
type RetrievedContext struct {
	// Context is the hit contents joined with blank lines, in rank order.
	Context string

	// Sources describes each hit for response attribution.
	Sources []model.ChunkSource
}

// Retriever fetches topic-relevant textbook chunks from the vector store.
type Retriever struct {
	embedder         llm.EmbeddingProvider
	vectorStore      store.VectorStore
	collectionPrefix string
	topK             int
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder llm.EmbeddingProvider, vs store.VectorStore, collectionPrefix string, topK int) *Retriever {
	return &Retriever{
		embedder:         embedder,
		vectorStore:      vs,
		collectionPrefix: collectionPrefix,
		topK:             topK,
	}
}

// CollectionName returns the vector collection for a subject.
func (r *Retriever) CollectionName(subject model.Subject) string {
	return fmt.Sprintf("%s_%s", r.collectionPrefix, subject)
}

// Retrieve embeds the topic and returns the closest chunks for the subject.
func (r *Retriever) Retrieve(ctx context.Context, subject model.Subject, topic string) (*RetrievedContext, error) {
	start := time.Now()

	embedding, err := r.embedder.EmbedSingle(ctx, topic)
	if err != nil {
		metrics.GetMetrics().RecordRetrieval(time.Since(start), err)
		return nil, fmt.Errorf("embed topic: %w", err)
	}

	results, err := r.vectorStore.Search(ctx, r.CollectionName(subject), embedding, r.topK)
	metrics.GetMetrics().RecordRetrieval(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	contents := make([]string, 0, len(results))
	sources := make([]model.ChunkSource, 0, len(results))
	for _, res := range results {
		contents = append(contents, res.Content)
		excerpt := textutil.TruncateString(res.Content, 120)
		if excerpt != res.Content {
			excerpt += "..."
		}
		sources = append(sources, model.ChunkSource{
			Chapter: res.Chapter,
			Score:   res.Score,
			Excerpt: excerpt,
		})
	}

	logger.Debugw("Context retrieved",
		"subject", string(subject),
		"topic", topic,
		"hits", len(results),
	)

	return &RetrievedContext{
		Context: strings.Join(contents, "\n\n"),
		Sources: sources,
	}, nil
}
