package llm

import "strings"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role" yaml:"role"` // "system", "user", "assistant"
	Content string `json:"content" yaml:"content"`
}

// CompletionRequest is the universal input for all LLM providers.
type CompletionRequest struct {
	// Model overrides the adapter's default model.
	Model string `json:"model,omitempty" yaml:"model"`
	// Messages is the conversation history.
	Messages []Message `json:"messages" yaml:"messages"`
	// SystemPrompt is sent through the provider's system channel.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt"`
	// Temperature controls randomness. 0 means provider default.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature"`
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens"`
	// Extra holds provider-specific fields that don't fit the universal schema.
	// Dialects may inspect this for provider-specific features.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra"`
}

// Text returns the concatenated content of all messages, system prompt first.
// It is what token approximation counts when a provider reports no usage.
func (r CompletionRequest) Text() string {
	parts := make([]string, 0, len(r.Messages)+1)
	if r.SystemPrompt != "" {
		parts = append(parts, r.SystemPrompt)
	}
	for _, m := range r.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

// CompletionResponse is the universal output from all LLM providers.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
	// Usage reports token consumption.
	Usage Usage `json:"usage"`
}

// Usage reports token consumption. Counts a provider does not report stay nil.
type Usage struct {
	InputTokens  *int   `json:"input_tokens,omitempty"`
	OutputTokens *int   `json:"output_tokens,omitempty"`
	TotalTokens  *int   `json:"total_tokens,omitempty"`
	StopReason   string `json:"stop_reason"`
}

// NewUsage builds a Usage from reported input and output counts, deriving the total.
func NewUsage(input, output int, stopReason string) Usage {
	total := input + output
	return Usage{InputTokens: &input, OutputTokens: &output, TotalTokens: &total, StopReason: stopReason}
}

// Complete reports whether both input and output counts are known.
func (u Usage) Complete() bool { return u.InputTokens != nil && u.OutputTokens != nil }
