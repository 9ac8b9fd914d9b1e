// Package ollama talks to a local Ollama server: it lists installed models,
// pulls missing ones and streams chat completions over NDJSON.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/httpclient/ndjson"
	"github.com/kbukum/shownotes/httpclient/rest"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Ollama provider.
	ProviderName = "ollama"

	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
	defaultTimeout     = 10 * time.Minute
	defaultPullTimeout = 30 * time.Minute

	tagsPath = "/api/tags"
	pullPath = "/api/pull"
	chatPath = "/api/chat"

	pullSuccess = "success"
)

// compile-time assertions
var (
	_ llm.Provider       = (*Provider)(nil)
	_ provider.Closeable = (*Provider)(nil)
)

// Config holds configuration for the Ollama provider.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PullTimeout time.Duration `mapstructure:"pull_timeout"`
	// DisablePull turns a missing model into a configuration error instead
	// of downloading it.
	DisablePull bool `mapstructure:"disable_pull"`
}

// Provider implements llm.Provider using Ollama's HTTP API.
type Provider struct {
	cfg  Config
	rest *rest.Client
	log  *logger.Logger
}

// NewProvider creates a new Ollama LLM provider. No API key is needed.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.BaseURL = util.Coalesce(cfg.BaseURL, defaultOllamaURL)
	cfg.Model = util.Coalesce(cfg.Model, defaultOllamaModel)
	cfg.Timeout = util.Coalesce(cfg.Timeout, defaultTimeout)
	cfg.PullTimeout = util.Coalesce(cfg.PullTimeout, defaultPullTimeout)

	client, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, apperrors.Configuration("ollama: " + err.Error())
	}
	return &Provider{cfg: cfg, rest: client, log: logger.WithComponent(ProviderName)}, nil
}

// Factory returns a provider.Factory that creates Ollama Provider instances
// from a generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		base := llm.ConfigFromMap(cfg)
		return NewProvider(Config{
			BaseURL:     base.BaseURL,
			Model:       base.Model,
			Temperature: base.Temperature,
			MaxTokens:   base.MaxTokens,
			Timeout:     util.Duration(cfg, "timeout", defaultTimeout),
			PullTimeout: util.Duration(cfg, "pull_timeout", defaultPullTimeout),
			DisablePull: util.Bool(cfg, "disable_pull"),
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.Models(ctx)
	return err == nil
}

// Close releases idle connections.
func (p *Provider) Close(ctx context.Context) error { return p.rest.Close(ctx) }

// --- internal Ollama API types ---

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  *ollamaOptions      `json:"options,omitempty"`
}

type ollamaChatChunk struct {
	Model           string            `json:"model"`
	Message         ollamaChatMessage `json:"message"`
	Done            bool              `json:"done"`
	DoneReason      string            `json:"done_reason"`
	PromptEvalCount *int              `json:"prompt_eval_count"`
	EvalCount       *int              `json:"eval_count"`
	Error           string            `json:"error"`
}

type ollamaTags struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaPullStatus struct {
	Status    string `json:"status"`
	Digest    string `json:"digest"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Models lists the names of locally installed models.
func (p *Provider) Models(ctx context.Context) ([]string, error) {
	resp, err := rest.Get[ollamaTags](ctx, p.rest, tagsPath)
	if err != nil {
		return nil, httpclient.ToProviderError(ProviderName, err)
	}
	names := make([]string, 0, len(resp.Data.Models))
	for _, m := range resp.Data.Models {
		names = append(names, util.Coalesce(m.Name, m.Model))
	}
	return names, nil
}

// HasModel reports whether model is installed. A model without a tag
// matches its ":latest" variant.
func (p *Provider) HasModel(ctx context.Context, model string) (bool, error) {
	names, err := p.Models(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == model || (!strings.Contains(model, ":") && name == model+":latest") {
			return true, nil
		}
	}
	return false, nil
}

// Pull downloads model, reading the NDJSON progress stream until Ollama
// reports success.
func (p *Provider) Pull(ctx context.Context, model string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PullTimeout)
	defer cancel()

	stream, err := p.rest.HTTP().DoStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   pullPath,
		Body:   ollamaPullRequest{Model: model, Stream: true},
	})
	if err != nil {
		return httpclient.ToProviderError(ProviderName, err)
	}

	log := p.log.WithContext(ctx)
	dec := ndjson.NewDecoder(stream.Body, func(s ollamaPullStatus) bool {
		return s.Status == pullSuccess || s.Error != ""
	})
	defer dec.Close()

	for status, err := range dec.All(ctx) {
		if err != nil {
			return httpclient.ToProviderError(ProviderName, err)
		}
		if status.Error != "" {
			return apperrors.Provider(ProviderName, 0, []byte(status.Error)).WithDetail("model", model)
		}
		log.Debug("pull progress", logger.Fields(
			logger.FieldModel, model, logger.FieldStatus, status.Status,
			"completed", status.Completed, "total", status.Total,
		))
		if status.Status == pullSuccess {
			log.Info("model pulled", logger.Fields(logger.FieldModel, model))
			return nil
		}
	}
	return apperrors.Provider(ProviderName, 0, []byte("pull stream ended before success")).WithDetail("model", model)
}

// ensureModel pulls model when it is not installed.
func (p *Provider) ensureModel(ctx context.Context, model string) error {
	ok, err := p.HasModel(ctx, model)
	if err != nil || ok {
		return err
	}
	if p.cfg.DisablePull {
		return apperrors.Configuration(fmt.Sprintf("ollama: model %q is not installed", model))
	}
	return p.Pull(ctx, model)
}

// Execute sends a completion request, pulling the model first if needed,
// and assembles the streamed reply.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	chatReq := p.buildChatRequest(req)
	if err := p.ensureModel(ctx, chatReq.Model); err != nil {
		return llm.CompletionResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	stream, err := p.rest.HTTP().DoStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   chatReq,
	})
	if err != nil {
		return llm.CompletionResponse{}, httpclient.ToProviderError(ProviderName, err)
	}

	dec := ndjson.NewDecoder(stream.Body, func(c ollamaChatChunk) bool { return c.Done || c.Error != "" })
	defer dec.Close()

	var (
		content strings.Builder
		last    ollamaChatChunk
	)
	for chunk, err := range dec.All(ctx) {
		if err != nil {
			return llm.CompletionResponse{}, httpclient.ToProviderError(ProviderName, err)
		}
		if chunk.Error != "" {
			return llm.CompletionResponse{}, apperrors.Provider(ProviderName, 0, []byte(chunk.Error))
		}
		content.WriteString(chunk.Message.Content)
		last = chunk
	}
	if !last.Done {
		return llm.CompletionResponse{}, apperrors.Provider(ProviderName, 0, []byte("chat stream ended before done"))
	}
	if content.Len() == 0 {
		return llm.CompletionResponse{}, apperrors.EmptyResult(ProviderName, "message.content")
	}

	usage := llm.Usage{
		InputTokens:  last.PromptEvalCount,
		OutputTokens: last.EvalCount,
		StopReason:   last.DoneReason,
	}
	if usage.Complete() {
		total := *usage.InputTokens + *usage.OutputTokens
		usage.TotalTokens = &total
	}
	return llm.CompletionResponse{
		Content: content.String(),
		Model:   util.Coalesce(last.Model, chatReq.Model),
		Usage:   usage,
	}, nil
}

// buildChatRequest creates an Ollama API request from a llm.CompletionRequest.
func (p *Provider) buildChatRequest(req llm.CompletionRequest) ollamaChatRequest {
	msgs := make([]ollamaChatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, ollamaChatMessage{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, ollamaChatMessage{Role: m.Role, Content: m.Content})
	}

	out := ollamaChatRequest{
		Model:    util.Coalesce(req.Model, p.cfg.Model),
		Messages: msgs,
		Stream:   true,
	}
	temp := util.Coalesce(req.Temperature, p.cfg.Temperature)
	maxTokens := util.Coalesce(req.MaxTokens, p.cfg.MaxTokens)
	if temp != 0 || maxTokens != 0 {
		out.Options = &ollamaOptions{Temperature: temp, NumPredict: maxTokens}
	}
	return out
}
