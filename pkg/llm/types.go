package llm

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token accounting for one generation call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResponse is the result of a Generate call.
type GenerateResponse struct {
	Content    string      `json:"content"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
}

// GenerateOptions holds per-call sampling overrides. Nil fields keep the
// provider's configured defaults.
type GenerateOptions struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// GenerateOption mutates GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithTemperature overrides the sampling temperature for one call.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) { o.Temperature = &t }
}

// WithTopP overrides the nucleus sampling threshold for one call.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) { o.TopP = &p }
}

// WithMaxTokens caps the completion length for one call.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) { o.MaxTokens = &n }
}

// ApplyGenerateOptions folds opts into a GenerateOptions value.
func ApplyGenerateOptions(opts ...GenerateOption) *GenerateOptions {
	out := &GenerateOptions{}
	for _, opt := range opts {
		opt(out)
	}
	return out
}
