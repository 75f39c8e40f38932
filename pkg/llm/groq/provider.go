// Package groq implements a chat provider for the Groq inference API.
// The API is OpenAI-compatible, so requests go to /chat/completions with a
// Bearer token. Groq does not serve embeddings.
package groq

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redfire-io/pcb-tutor/pkg/llm"
	"github.com/redfire-io/pcb-tutor/pkg/utils/httpclient"
	"github.com/redfire-io/pcb-tutor/pkg/utils/json"
)

// ProviderName identifies the Groq provider in the registry.
const ProviderName = "groq"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// Config holds Groq provider settings.
type Config struct {
	// BaseURL is the API root. Defaults to the hosted Groq endpoint.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey is the Groq API key.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// ChatModel is the model used for completions.
	ChatModel string `json:"chat_model" mapstructure:"chat_model"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the retry budget for transport-level failures.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// Temperature, TopP and MaxTokens are default sampling parameters.
	// Zero values leave the API defaults in place.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	TopP        float64 `json:"top_p" mapstructure:"top_p"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the provider defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.groq.com/openai/v1",
		ChatModel:  "llama-3.3-70b-versatile",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// Provider calls the Groq chat completions API.
type Provider struct {
	config *Config
	client *httpclient.Client
}

// NewProvider builds a Groq provider from a config map.
func NewProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := configMap["max_retries"].(int); ok && v > 0 {
		cfg.MaxRetries = v
	}
	if v, ok := configMap["temperature"].(float64); ok {
		cfg.Temperature = v
	}
	if v, ok := configMap["top_p"].(float64); ok {
		cfg.TopP = v
	}
	if v, ok := configMap["max_tokens"].(int); ok {
		cfg.MaxTokens = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: api_key is required")
	}
	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig builds a Groq provider from structured config.
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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat runs a multi-turn conversation.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := p.complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Generate runs a single-turn completion with optional sampling overrides.
func (p *Provider) Generate(ctx context.Context, prompt, systemPrompt string, opts ...llm.GenerateOption) (*llm.GenerateResponse, error) {
	var messages []llm.Message
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	return p.complete(ctx, messages, llm.ApplyGenerateOptions(opts...))
}

func (p *Provider) complete(ctx context.Context, messages []llm.Message, opts *llm.GenerateOptions) (*llm.GenerateResponse, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	reqBody := chatRequest{
		Model:    p.config.ChatModel,
		Messages: chatMessages,
		Stream:   false,
	}
	if p.config.MaxTokens > 0 {
		reqBody.MaxTokens = p.config.MaxTokens
	}
	if p.config.Temperature > 0 {
		reqBody.Temperature = p.config.Temperature
	}
	if p.config.TopP > 0 {
		reqBody.TopP = p.config.TopP
	}
	if opts != nil {
		if opts.MaxTokens != nil {
			reqBody.MaxTokens = *opts.MaxTokens
		}
		if opts.Temperature != nil {
			reqBody.Temperature = *opts.Temperature
		}
		if opts.TopP != nil {
			reqBody.TopP = *opts.TopP
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	var chatResp chatResponse
	if err := p.client.DoJSON(req, &chatResp); err != nil {
		return nil, err
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return &llm.GenerateResponse{
		Content: chatResp.Choices[0].Message.Content,
		TokenUsage: &llm.TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
	}, nil
}
