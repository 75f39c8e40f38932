// Package llm defines the provider abstraction used for embeddings and text
// generation. Concrete providers live in subpackages and register themselves
// on blank import.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider produces vector embeddings for text.
type EmbeddingProvider interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle returns the embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name.
	Name() string
}

// ChatProvider produces text from an instruction-tuned model.
type ChatProvider interface {
	// Chat runs a multi-turn conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate runs a single-turn completion. Per-call options override the
	// provider's configured sampling parameters.
	Generate(ctx context.Context, prompt, systemPrompt string, opts ...GenerateOption) (*GenerateResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider supports both embeddings and chat.
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// Factory function types for the registry.
type (
	ProviderFactory          func(config map[string]any) (Provider, error)
	EmbeddingProviderFactory func(config map[string]any) (EmbeddingProvider, error)
	ChatProviderFactory      func(config map[string]any) (ChatProvider, error)
)

var registry = &providerRegistry{
	providers:          make(map[string]ProviderFactory),
	embeddingProviders: make(map[string]EmbeddingProviderFactory),
	chatProviders:      make(map[string]ChatProviderFactory),
}

type providerRegistry struct {
	mu                 sync.RWMutex
	providers          map[string]ProviderFactory
	embeddingProviders map[string]EmbeddingProviderFactory
	chatProviders      map[string]ChatProviderFactory
}

// RegisterProvider registers a factory for a full provider.
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.providers[name] = factory
}

// RegisterEmbeddingProvider registers an embedding-only factory.
func RegisterEmbeddingProvider(name string, factory EmbeddingProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.embeddingProviders[name] = factory
}

// RegisterChatProvider registers a chat-only factory.
func RegisterChatProvider(name string, factory ChatProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.chatProviders[name] = factory
}

// NewProvider builds a full provider by name.
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.providers[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return factory(config)
}

// NewEmbeddingProvider builds an embedding provider by name. Dedicated
// embedding factories win over full-provider factories.
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if factory, ok := registry.embeddingProviders[name]; ok {
		return factory(config)
	}
	if factory, ok := registry.providers[name]; ok {
		return factory(config)
	}
	return nil, fmt.Errorf("unknown embedding provider: %s", name)
}

// NewChatProvider builds a chat provider by name. Dedicated chat factories
// win over full-provider factories.
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if factory, ok := registry.chatProviders[name]; ok {
		return factory(config)
	}
	if factory, ok := registry.providers[name]; ok {
		return factory(config)
	}
	return nil, fmt.Errorf("unknown chat provider: %s", name)
}

// ListProviders returns the names of all registered providers.
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	collect := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range registry.providers {
		collect(name)
	}
	for name := range registry.embeddingProviders {
		collect(name)
	}
	for name := range registry.chatProviders {
		collect(name)
	}
	return names
}
