// Package claude maps the llm types onto Anthropic's Messages API.
package claude

import (
	"encoding/json"
	"strings"

	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Claude provider.
	ProviderName = "claude"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-haiku-20241022"
	defaultMaxTokens = 4096
)

func init() {
	llm.RegisterDialect(ProviderName, Dialect{})
}

// Dialect implements llm.Dialect for POST /v1/messages.
type Dialect struct{}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type response struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  *int `json:"input_tokens"`
		OutputTokens *int `json:"output_tokens"`
	} `json:"usage"`
}

// Name returns the dialect identifier.
func (Dialect) Name() string { return ProviderName }

// ChatPath returns the Messages API path; the model travels in the body.
func (Dialect) ChatPath(string) string { return "/v1/messages" }

// HealthPath returns "": the API has no unauthenticated health endpoint.
func (Dialect) HealthPath() string { return "" }

// BuildRequest maps the request. max_tokens is mandatory for this API and
// defaults to 4096.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	system, msgs := llm.SplitSystem(req)
	out := request{
		Model:       req.Model,
		MaxTokens:   util.Coalesce(req.MaxTokens, defaultMaxTokens),
		System:      system,
		Messages:    make([]message, 0, len(msgs)),
		Temperature: req.Temperature,
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// ParseResponse concatenates the text blocks of the response.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, llm.ErrNoContent
	}

	usage := llm.Usage{StopReason: resp.StopReason}
	if resp.Usage != nil {
		usage.InputTokens = resp.Usage.InputTokens
		usage.OutputTokens = resp.Usage.OutputTokens
		if usage.Complete() {
			total := *usage.InputTokens + *usage.OutputTokens
			usage.TotalTokens = &total
		}
	}
	return &llm.CompletionResponse{Content: sb.String(), Model: resp.Model, Usage: usage}, nil
}

// New creates a Claude adapter authenticated with the x-api-key header.
func New(apiKey string, cfg llm.Config) (*llm.Adapter, error) {
	cfg.Dialect = ProviderName
	cfg.BaseURL = util.Coalesce(cfg.BaseURL, defaultBaseURL)
	cfg.Model = util.Coalesce(cfg.Model, defaultModel)
	cfg.Auth = httpclient.HeaderAuth("x-api-key", apiKey)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	cfg.Headers["anthropic-version"] = APIVersion
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
