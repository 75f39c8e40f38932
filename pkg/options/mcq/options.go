// Package mcq provides question-generation pipeline configuration options.
package mcq

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/redfire-io/pcb-tutor/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Store backends for retrieved chunks.
const (
	StoreMilvus = "milvus"
	StoreMemory = "memory"
)

// Options contains the retrieval and generation pipeline configuration.
type Options struct {
	// Store selects the vector store backend (milvus or memory).
	Store string `json:"store" mapstructure:"store"`

	// TopK is the number of chunks retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ChunkSize is the chunk length in runes used when indexing.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the rune overlap between consecutive chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// CollectionPrefix prefixes per-subject collection names, producing
	// names like "textbook_biology".
	CollectionPrefix string `json:"collection-prefix" mapstructure:"collection-prefix"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// DataDir stores downloaded datasets and the dataset registry.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// DefaultQuestionCount is used when a request omits or botches count.
	DefaultQuestionCount int `json:"default-question-count" mapstructure:"default-question-count"`

	// MaxQuestionCount caps the per-request question count.
	MaxQuestionCount int `json:"max-question-count" mapstructure:"max-question-count"`

	// MinContextChars is the minimum joined-context length below which a
	// topic is treated as not covered by the material.
	MinContextChars int `json:"min-context-chars" mapstructure:"min-context-chars"`

	// ContextCharLimit truncates the retrieved context in the generation
	// prompt.
	ContextCharLimit int `json:"context-char-limit" mapstructure:"context-char-limit"`

	// ValidateTopics toggles the LLM topic/subject gate.
	ValidateTopics bool `json:"validate-topics" mapstructure:"validate-topics"`
}

// NewOptions creates Options with defaults. The embedding dimension matches
// sentence-transformers/all-MiniLM-L6-v2.
func NewOptions() *Options {
	return &Options{
		Store:                StoreMilvus,
		TopK:                 5,
		ChunkSize:            512,
		ChunkOverlap:         50,
		CollectionPrefix:     "textbook",
		EmbeddingDim:         384,
		DataDir:              "_output/mcq-data",
		DefaultQuestionCount: 5,
		MaxQuestionCount:     20,
		MinContextChars:      50,
		ContextCharLimit:     1500,
		ValidateTopics:       true,
	}
}

// AddFlags adds pipeline flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Store, options.Join(prefixes...)+"mcq.store", o.Store, "Vector store backend (milvus or memory).")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"mcq.top-k", o.TopK, "Number of chunks retrieved per query.")
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"mcq.chunk-size", o.ChunkSize, "Chunk size in runes used when indexing.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"mcq.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks.")
	fs.StringVar(&o.CollectionPrefix, options.Join(prefixes...)+"mcq.collection-prefix", o.CollectionPrefix, "Prefix for per-subject collection names.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"mcq.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"mcq.data-dir", o.DataDir, "Directory for datasets and the dataset registry.")
	fs.IntVar(&o.DefaultQuestionCount, options.Join(prefixes...)+"mcq.default-question-count", o.DefaultQuestionCount, "Question count used when the request omits it.")
	fs.IntVar(&o.MaxQuestionCount, options.Join(prefixes...)+"mcq.max-question-count", o.MaxQuestionCount, "Maximum questions per request.")
	fs.IntVar(&o.MinContextChars, options.Join(prefixes...)+"mcq.min-context-chars", o.MinContextChars, "Minimum retrieved context length for a topic to count as covered.")
	fs.IntVar(&o.ContextCharLimit, options.Join(prefixes...)+"mcq.context-char-limit", o.ContextCharLimit, "Maximum context characters passed to the generation prompt.")
	fs.BoolVar(&o.ValidateTopics, options.Join(prefixes...)+"mcq.validate-topics", o.ValidateTopics, "Gate topics against the subject with the chat model.")
}

// Validate validates the pipeline options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Store != StoreMilvus && o.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("mcq.store must be %q or %q, got %q", StoreMilvus, StoreMemory, o.Store))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("mcq.top-k must be positive"))
	}
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("mcq.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("mcq.chunk-overlap must be in [0, chunk-size)"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("mcq.embedding-dim must be positive"))
	}
	if o.DefaultQuestionCount <= 0 || o.DefaultQuestionCount > o.MaxQuestionCount {
		errs = append(errs, fmt.Errorf("mcq.default-question-count must be in [1, max-question-count]"))
	}
	return errs
}

// Complete completes the pipeline options with defaults.
func (o *Options) Complete() error {
	if o.CollectionPrefix == "" {
		o.CollectionPrefix = "textbook"
	}
	if o.MinContextChars <= 0 {
		o.MinContextChars = 50
	}
	if o.ContextCharLimit <= 0 {
		o.ContextCharLimit = 1500
	}
	return nil
}
