// Package cohere maps the llm types onto Cohere's v2 Chat API.
package cohere

import (
	"encoding/json"
	"strings"

	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Cohere provider.
	ProviderName = "cohere"

	defaultBaseURL = "https://api.cohere.com"
	defaultModel   = "command-r-08-2024"
)

func init() {
	llm.RegisterDialect(ProviderName, Dialect{})
}

// Dialect implements llm.Dialect for POST /v2/chat.
type Dialect struct{}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type tokenCounts struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

type response struct {
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Usage *struct {
		BilledUnits *tokenCounts `json:"billed_units"`
		Tokens      *tokenCounts `json:"tokens"`
	} `json:"usage"`
}

// Name returns the dialect identifier.
func (Dialect) Name() string { return ProviderName }

// ChatPath returns the chat path; the model travels in the body.
func (Dialect) ChatPath(string) string { return "/v2/chat" }

// HealthPath returns "".
func (Dialect) HealthPath() string { return "" }

// BuildRequest maps the request. The system prompt becomes a leading system message.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	out := request{
		Model:       req.Model,
		Messages:    make([]message, 0, len(req.Messages)+1),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.SystemPrompt != "" {
		out.Messages = append(out.Messages, message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// ParseResponse reads the text content items. Token counts come from
// usage.tokens, falling back to usage.billed_units.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, c := range resp.Message.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, llm.ErrNoContent
	}

	usage := llm.Usage{StopReason: resp.FinishReason}
	if resp.Usage != nil {
		counts := resp.Usage.Tokens
		if counts == nil {
			counts = resp.Usage.BilledUnits
		}
		if counts != nil {
			usage.InputTokens = counts.InputTokens
			usage.OutputTokens = counts.OutputTokens
			if usage.Complete() {
				total := *usage.InputTokens + *usage.OutputTokens
				usage.TotalTokens = &total
			}
		}
	}
	return &llm.CompletionResponse{Content: sb.String(), Usage: usage}, nil
}

// New creates a Cohere adapter authenticated with a bearer token.
func New(apiKey string, cfg llm.Config) (*llm.Adapter, error) {
	cfg.Dialect = ProviderName
	cfg.BaseURL = util.Coalesce(cfg.BaseURL, defaultBaseURL)
	cfg.Model = util.Coalesce(cfg.Model, defaultModel)
	cfg.Auth = httpclient.BearerAuth(apiKey)
	return llm.NewWithDialect(Dialect{}, cfg)
}

// NewFactory returns a provider.Factory reading api_key plus the options
// understood by llm.ConfigFromMap.
func NewFactory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		key, err := provider.APIKey(ProviderName, cfg)
		if err != nil {
			return nil, err
		}
		return New(key, llm.ConfigFromMap(cfg))
	}
}
