// Package gemini maps the llm types onto Google's Generative Language API.
package gemini

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Gemini provider.
	ProviderName = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

func init() {
	llm.RegisterDialect(ProviderName, Dialect{})
}

// Dialect implements llm.Dialect for models/{model}:generateContent.
type Dialect struct{}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type request struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type response struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     *int `json:"promptTokenCount"`
		CandidatesTokenCount *int `json:"candidatesTokenCount"`
		TotalTokenCount      *int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Name returns the dialect identifier.
func (Dialect) Name() string { return ProviderName }

// ChatPath returns the generateContent path for model.
func (Dialect) ChatPath(model string) string {
	return "/v1beta/models/" + url.PathEscape(model) + ":generateContent"
}

// HealthPath returns "": model listing needs the API key.
func (Dialect) HealthPath() string { return "" }

// BuildRequest maps the request. Assistant turns use Gemini's "model" role.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	system, msgs := llm.SplitSystem(req)
	out := request{Contents: make([]content, 0, len(msgs))}
	for _, m := range msgs {
		role := m.Role
		if role == llm.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	if system != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		out.GenerationConfig = &generationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxTokens}
	}
	return out, nil
}

// ParseResponse reads the first candidate's text parts.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, llm.ErrNoContent
	}
	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return nil, llm.ErrNoContent
	}

	usage := llm.Usage{StopReason: cand.FinishReason}
	if m := resp.UsageMetadata; m != nil {
		usage.InputTokens = m.PromptTokenCount
		usage.OutputTokens = m.CandidatesTokenCount
		usage.TotalTokens = m.TotalTokenCount
	}
	return &llm.CompletionResponse{Content: sb.String(), Model: resp.ModelVersion, Usage: usage}, nil
}

// New creates a Gemini adapter authenticated with the x-goog-api-key header.
func New(apiKey string, cfg llm.Config) (*llm.Adapter, error) {
	cfg.Dialect = ProviderName
	cfg.BaseURL = util.Coalesce(cfg.BaseURL, defaultBaseURL)
	cfg.Model = util.Coalesce(cfg.Model, defaultModel)
	cfg.Auth = httpclient.HeaderAuth("x-goog-api-key", apiKey)
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
