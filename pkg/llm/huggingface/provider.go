// Package huggingface implements an embedding provider backed by the
// HuggingFace Inference API feature-extraction pipeline.
package huggingface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redfire-io/pcb-tutor/pkg/llm"
	"github.com/redfire-io/pcb-tutor/pkg/utils/httpclient"
	"github.com/redfire-io/pcb-tutor/pkg/utils/json"
)

// ProviderName identifies the HuggingFace provider in the registry.
const ProviderName = "huggingface"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewProvider)
}

// Config holds HuggingFace provider settings.
type Config struct {
	// BaseURL is the Inference API root.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey is the HuggingFace API token.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// EmbedModel is the model ID used for feature extraction.
	EmbedModel string `json:"embed_model" mapstructure:"embed_model"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the retry budget for transport-level failures.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// WaitForModel asks the API to block while a cold model loads.
	WaitForModel bool `json:"wait_for_model" mapstructure:"wait_for_model"`
}

// DefaultConfig returns the provider defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api-inference.huggingface.co",
		EmbedModel:   "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:      120 * time.Second,
		MaxRetries:   3,
		WaitForModel: true,
	}
}

// Provider calls the HuggingFace feature-extraction API.
type Provider struct {
	config *Config
	client *httpclient.Client
}

// NewProvider builds a HuggingFace provider from a config map.
func NewProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		cfg.EmbedModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := configMap["max_retries"].(int); ok && v > 0 {
		cfg.MaxRetries = v
	}
	if v, ok := configMap["wait_for_model"].(bool); ok {
		cfg.WaitForModel = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: api_key is required")
	}
	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig builds a HuggingFace provider from structured config.
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout, cfg.MaxRetries),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

type embeddingRequest struct {
	Inputs  []string          `json:"inputs"`
	Options *embeddingOptions `json:"options,omitempty"`
}

type embeddingOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
}

// Embed returns one embedding per input text. Sentence-transformer models
// return pooled vectors; token-level models are mean-pooled here.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{Inputs: texts}
	if p.config.WaitForModel {
		reqBody.Options = &embeddingOptions{WaitForModel: true}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", p.config.BaseURL, p.config.EmbedModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var embeddings [][]float32
	if err := json.Unmarshal(respBody, &embeddings); err == nil {
		return embeddings, nil
	}

	// Some models return token-level embeddings as a 3D array.
	var tokenEmbeddings [][][]float32
	if err := json.Unmarshal(respBody, &tokenEmbeddings); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	embeddings = make([][]float32, len(tokenEmbeddings))
	for i, tokens := range tokenEmbeddings {
		if len(tokens) == 0 {
			continue
		}
		dim := len(tokens[0])
		embeddings[i] = make([]float32, dim)
		for _, token := range tokens {
			for j, v := range token {
				embeddings[i][j] += v
			}
		}
		for j := range embeddings[i] {
			embeddings[i][j] /= float32(len(tokens))
		}
	}
	return embeddings, nil
}

// EmbedSingle returns the embedding for one text.
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}
