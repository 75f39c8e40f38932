package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ name string }

func (s *stubProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}
func (s *stubProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{0}, nil
}
func (s *stubProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return "", nil
}
func (s *stubProvider) Generate(ctx context.Context, prompt, systemPrompt string, opts ...GenerateOption) (*GenerateResponse, error) {
	return &GenerateResponse{}, nil
}
func (s *stubProvider) Name() string { return s.name }

func TestRegistryFullProviderServesBothRoles(t *testing.T) {
	RegisterProvider("stub-full", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "stub-full"}, nil
	})

	em, err := NewEmbeddingProvider("stub-full", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub-full", em.Name())

	ch, err := NewChatProvider("stub-full", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub-full", ch.Name())
}

func TestRegistryDedicatedFactoryWins(t *testing.T) {
	RegisterProvider("stub-both", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "full"}, nil
	})
	RegisterChatProvider("stub-both", func(config map[string]any) (ChatProvider, error) {
		return &stubProvider{name: "chat-only"}, nil
	})

	ch, err := NewChatProvider("stub-both", nil)
	require.NoError(t, err)
	assert.Equal(t, "chat-only", ch.Name())
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := NewProvider("does-not-exist", nil)
	require.Error(t, err)

	_, err = NewEmbeddingProvider("does-not-exist", nil)
	require.Error(t, err)

	_, err = NewChatProvider("does-not-exist", nil)
	require.Error(t, err)
}

func TestListProvidersIncludesRegistered(t *testing.T) {
	RegisterEmbeddingProvider("stub-embed", func(config map[string]any) (EmbeddingProvider, error) {
		return &stubProvider{name: "stub-embed"}, nil
	})
	assert.Contains(t, ListProviders(), "stub-embed")
}

func TestApplyGenerateOptions(t *testing.T) {
	opts := ApplyGenerateOptions(WithTemperature(0.3), WithTopP(0.9), WithMaxTokens(1500))
	require.NotNil(t, opts.Temperature)
	require.NotNil(t, opts.TopP)
	require.NotNil(t, opts.MaxTokens)
	assert.InDelta(t, 0.3, *opts.Temperature, 1e-9)
	assert.InDelta(t, 0.9, *opts.TopP, 1e-9)
	assert.Equal(t, 1500, *opts.MaxTokens)

	empty := ApplyGenerateOptions()
	assert.Nil(t, empty.Temperature)
	assert.Nil(t, empty.TopP)
	assert.Nil(t, empty.MaxTokens)
}
