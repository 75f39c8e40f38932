// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/redfire-io/pcb-tutor/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// providersNeedingKey lists providers that cannot work without an API key.
var providersNeedingKey = map[string]bool{
	"groq":        true,
	"openai":      true,
	"huggingface": true,
}

// ProviderOptions configures one LLM provider (embedding or chat).
type ProviderOptions struct {
	// Provider is the registry name (groq, openai, huggingface, ollama).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL overrides the provider's default API root.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey authenticates against hosted providers.
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model is the model name for this role.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds each request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the transport retry budget.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewEmbeddingOptions returns defaults for the embedding role.
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "huggingface",
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// NewChatOptions returns defaults for the chat role.
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "groq",
		Model:      "llama-3.3-70b-versatile",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap converts the options into the map consumed by provider
// factories.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.Model,
		"chat_model":  o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds provider flags under the given prefixes, e.g.
// "embedding.llm.provider" or "chat.llm.provider".
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"llm.provider", o.Provider, "LLM provider (groq, openai, huggingface, ollama).")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"llm.base-url", o.BaseURL, "LLM API base URL (empty uses the provider default).")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"llm.api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"llm.model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"llm.timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"llm.max-retries", o.MaxRetries, "LLM maximum number of retries.")
}

// Validate validates the provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm provider is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("llm model is required"))
	}
	if providersNeedingKey[o.Provider] && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for provider %q", o.Provider))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm timeout must be positive"))
	}
	return errs
}

// Complete completes the provider options with defaults.
func (o *ProviderOptions) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
