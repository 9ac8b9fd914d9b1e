// Package openaicompat serves every provider that speaks the OpenAI chat
// completions API through one SDK-backed adapter, parameterised by Profile.
package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

// compile-time assertions
var (
	_ llm.Provider       = (*Provider)(nil)
	_ provider.Closeable = (*Provider)(nil)
)

const defaultTimeout = 120 * time.Second

// Config holds configuration for an OpenAI-compatible provider.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Provider implements llm.Provider with the openai-go SDK.
type Provider struct {
	profile Profile
	cfg     Config
	http    *http.Client
	client  oai.Client
}

// New creates a provider for profile. SDK retries are disabled: retrying is
// the caller's policy.
func New(profile Profile, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.MissingCredential(profile.Name)
	}
	cfg.BaseURL = util.Coalesce(cfg.BaseURL, profile.BaseURL)
	cfg.Model = util.Coalesce(cfg.Model, profile.DefaultModel)
	cfg.Timeout = util.Coalesce(cfg.Timeout, defaultTimeout)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	client := oai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	return &Provider{profile: profile, cfg: cfg, http: httpClient, client: client}, nil
}

// NewFactory returns a provider.Factory for the named profile, reading
// api_key plus the options understood by llm.ConfigFromMap.
func NewFactory(name string) provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		profile, ok := Lookup(name)
		if !ok {
			return nil, apperrors.UnknownProvider("llm", name)
		}
		key, err := provider.APIKey(name, cfg)
		if err != nil {
			return nil, err
		}
		base := llm.ConfigFromMap(cfg)
		return New(profile, Config{
			APIKey:      key,
			BaseURL:     base.BaseURL,
			Model:       base.Model,
			Temperature: base.Temperature,
			MaxTokens:   base.MaxTokens,
			Timeout:     base.Timeout,
		})
	}
}

// Name returns the profile name.
func (p *Provider) Name() string { return p.profile.Name }

// IsAvailable reports whether the provider is configured. No request is made.
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

// Close releases idle connections.
func (p *Provider) Close(context.Context) error {
	p.http.CloseIdleConnections()
	return nil
}

// Execute sends a chat completion request.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return llm.CompletionResponse{}, apperrors.Validation(fmt.Sprintf("%s: %v", p.profile.Name, err))
	}

	var httpResp *http.Response
	resp, err := p.client.Chat.Completions.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		return llm.CompletionResponse{}, p.convertError(ctx, httpResp, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return llm.CompletionResponse{}, apperrors.EmptyResult(p.profile.Name, "choices[0].message.content")
	}

	choice := resp.Choices[0]
	usage := llm.Usage{StopReason: choice.FinishReason}
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		usage = llm.NewUsage(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens), choice.FinishReason)
		if resp.Usage.TotalTokens > 0 {
			total := int(resp.Usage.TotalTokens)
			usage.TotalTokens = &total
		}
	}
	return llm.CompletionResponse{
		Content: choice.Message.Content,
		Model:   util.Coalesce(resp.Model, string(params.Model)),
		Usage:   usage,
	}, nil
}

// buildParams converts a CompletionRequest into SDK params.
func (p *Provider) buildParams(req llm.CompletionRequest) (oai.ChatCompletionNewParams, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, oai.SystemMessage(m.Content))
		case llm.RoleUser:
			messages = append(messages, oai.UserMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, oai.AssistantMessage(m.Content))
		default:
			return oai.ChatCompletionNewParams{}, fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(util.Coalesce(req.Model, p.cfg.Model)),
		Messages: messages,
	}
	if t := util.Coalesce(req.Temperature, p.cfg.Temperature); t != 0 {
		params.Temperature = param.NewOpt(t)
	}
	if n := util.Coalesce(req.MaxTokens, p.cfg.MaxTokens); n > 0 {
		params.MaxTokens = param.NewOpt(int64(n))
	}
	return params, nil
}

// convertError maps SDK failures onto the shared error taxonomy. A 2xx
// reply the SDK could not decode is a PARSE_ERROR; error replies keep
// their raw body.
func (p *Provider) convertError(ctx context.Context, resp *http.Response, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return apperrors.Provider(p.profile.Name, apiErr.StatusCode, errorBody(apiErr)).WithCause(err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.Parse(p.profile.Name, err)
	}
	if resp != nil {
		if resp.StatusCode < 300 && !isTransport(err) {
			return apperrors.Parse(p.profile.Name, err)
		}
		return apperrors.Provider(p.profile.Name, resp.StatusCode, nil).WithCause(err)
	}
	return apperrors.Provider(p.profile.Name, 0, nil).WithCause(err)
}

// errorBody returns the full error response, falling back to the decoded
// "error" object.
func errorBody(apiErr *oai.Error) []byte {
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if b, err := io.ReadAll(apiErr.Response.Body); err == nil && len(b) > 0 {
			return b
		}
	}
	return []byte(apiErr.RawJSON())
}

// isTransport reports a failure while reading the reply off the wire.
func isTransport(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}
