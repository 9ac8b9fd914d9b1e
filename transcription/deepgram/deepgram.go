// Package deepgram transcribes audio with Deepgram's pre-recorded audio API.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/httpclient/rest"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/transcript"
	"github.com/kbukum/shownotes/transcription"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Deepgram provider.
	ProviderName = "deepgram"

	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-2"
	defaultTimeout = 10 * time.Minute
	listenPath     = "/v1/listen"
)

// compile-time assertions
var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Closeable     = (*Provider)(nil)
)

// Config holds configuration for the Deepgram provider.
type Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Provider implements transcription.Provider against Deepgram.
type Provider struct {
	client *rest.Client
}

// New creates a Deepgram provider. An empty API key is a configuration error.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.MissingCredential(ProviderName)
	}
	client, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: util.Coalesce(cfg.BaseURL, defaultBaseURL),
		Timeout: util.Coalesce(cfg.Timeout, defaultTimeout),
		Auth:    httpclient.SchemeAuth("Token", cfg.APIKey),
	})
	if err != nil {
		return nil, apperrors.Configuration("deepgram: " + err.Error())
	}
	return &Provider{client: client}, nil
}

// NewFactory returns a provider.Factory that reads api_key, base_url and timeout.
func NewFactory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		key, err := provider.APIKey(ProviderName, cfg)
		if err != nil {
			return nil, err
		}
		return New(Config{
			APIKey:  key,
			BaseURL: util.String(cfg, "base_url"),
			Timeout: util.Duration(cfg, "timeout", defaultTimeout),
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured. Deepgram exposes no
// unauthenticated health endpoint, so no request is made.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.client != nil }

// Close releases idle connections.
func (p *Provider) Close(ctx context.Context) error { return p.client.Close(ctx) }

// Execute transcribes the request's audio in a single synchronous call.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	model := util.Coalesce(req.Model, defaultModel)
	query := map[string]string{
		"model":        model,
		"smart_format": "true",
		"punctuate":    "true",
		"paragraphs":   "true",
		"diarize":      strconv.FormatBool(req.SpeakerLabels),
	}
	if req.Language != "" {
		query["language"] = req.Language
	}

	var body any
	opts := []rest.RequestOption{rest.WithQuery(query)}
	if req.Audio.IsURL() {
		body = map[string]string{"url": req.Audio.URL}
	} else {
		f, err := os.Open(req.Audio.Path)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("deepgram: open audio: %v", err))
		}
		defer f.Close()
		body = f
		opts = append(opts, rest.WithHeaders(map[string]string{"Content-Type": "application/octet-stream"}))
	}

	resp, err := rest.Post[json.RawMessage](ctx, p.client, listenPath, body, opts...)
	if err != nil {
		return nil, httpclient.ToProviderError(ProviderName, err)
	}

	var out listenResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, apperrors.Parse(ProviderName, err)
	}
	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return nil, apperrors.EmptyResult(ProviderName, "alternatives")
	}

	return &transcription.Result{
		Transcript: transcript.FormatDeepgram(out.Results.Channels[0].Alternatives[0].words(), req.SpeakerLabels),
		Model:      model,
		CostRate:   transcription.CostRate(ProviderName, model),
		Duration:   out.Metadata.Duration,
	}, nil
}

// --- internal Deepgram API response types ---

type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []alternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

type alternative struct {
	Transcript string `json:"transcript"`
	Words      []word `json:"words"`
}

type word struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Speaker        *int    `json:"speaker"`
}

func (a alternative) words() []transcript.DeepgramWord {
	words := make([]transcript.DeepgramWord, len(a.Words))
	for i, w := range a.Words {
		words[i] = transcript.DeepgramWord{
			Word:    util.Coalesce(w.PunctuatedWord, w.Word),
			Start:   w.Start,
			Speaker: w.Speaker,
		}
	}
	return words
}
