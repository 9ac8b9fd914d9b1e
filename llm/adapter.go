package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/httpclient/rest"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = errors.New("llm: dialect is required")

var (
	_ Provider           = (*Adapter)(nil)
	_ provider.Closeable = (*Adapter)(nil)
)

// Adapter runs completions against any HTTP provider a Dialect describes.
// A non-2xx reply is a PROVIDER_ERROR, an unreadable body a PARSE_ERROR
// and a reply without text an EMPTY_RESULT.
type Adapter struct {
	cfg     Config
	dialect Dialect
	rest    *rest.Client
}

// New builds an adapter for the registered dialect named by cfg.Dialect.
func New(cfg Config) (*Adapter, error) {
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return NewWithDialect(d, cfg)
}

// NewWithDialect builds an adapter around d.
func NewWithDialect(d Dialect, cfg Config) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	cfg.Dialect = util.Coalesce(cfg.Dialect, d.Name())
	cfg.applyDefaults()

	client, err := rest.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    cfg.Auth,
		Headers: cfg.Headers,
	})
	if err != nil {
		return nil, apperrors.Configuration(cfg.Name + ": http client").WithCause(err)
	}
	return &Adapter{cfg: cfg, dialect: d, rest: client}, nil
}

// Name returns the provider id.
func (a *Adapter) Name() string { return a.cfg.Name }

// Dialect returns the wire mapping in use.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// IsAvailable probes the dialect's health path; without one the provider
// is assumed reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	path := a.dialect.HealthPath()
	if path == "" {
		return true
	}
	_, err := rest.Get[json.RawMessage](ctx, a.rest, path)
	return err == nil
}

// Close drops idle connections.
func (a *Adapter) Close(ctx context.Context) error { return a.rest.Close(ctx) }

// Execute fills unset request fields from the adapter config, sends one
// completion and maps the reply back. The reply's model falls back to the
// requested one.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	req.Model = util.Coalesce(req.Model, a.cfg.Model)
	if req.Model == "" {
		return CompletionResponse{}, apperrors.Configuration(a.Name() + ": model is required")
	}
	if req.Temperature == 0 {
		req.Temperature = a.cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.cfg.MaxTokens
	}

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, apperrors.Validation(fmt.Sprintf("%s: build request: %v", a.Name(), err))
	}
	resp, err := rest.Post[json.RawMessage](ctx, a.rest, a.dialect.ChatPath(req.Model), body)
	if err != nil {
		return CompletionResponse{}, httpclient.ToProviderError(a.Name(), err)
	}

	out, err := a.dialect.ParseResponse(resp.Data)
	switch {
	case errors.Is(err, ErrNoContent):
		return CompletionResponse{}, apperrors.EmptyResult(a.Name(), "content").WithCause(err)
	case err != nil:
		return CompletionResponse{}, apperrors.Parse(a.Name(), err)
	}
	out.Model = util.Coalesce(out.Model, req.Model)
	return *out, nil
}
