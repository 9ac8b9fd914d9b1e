// Package assemblyai transcribes audio with AssemblyAI's asynchronous job API.
//
// A call uploads local audio when needed, submits a transcript job, and polls
// it until AssemblyAI reports a terminal status.
package assemblyai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/httpclient/rest"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/resilience"
	"github.com/kbukum/shownotes/transcript"
	"github.com/kbukum/shownotes/transcription"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the AssemblyAI provider.
	ProviderName = "assembly"

	// OptionPollHook is the factory option carrying a func(poll int, done bool)
	// observer for status reads.
	OptionPollHook = "poll_hook"

	defaultBaseURL = "https://api.assemblyai.com"
	defaultModel   = "best"
	defaultTimeout = 5 * time.Minute

	uploadPath     = "/v2/upload"
	transcriptPath = "/v2/transcript"
)

// Job statuses reported by AssemblyAI.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// compile-time assertions
var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Closeable     = (*Provider)(nil)
)

// Config holds configuration for the AssemblyAI provider.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Poll controls the status loop; zero fields fall back to 3s and 60 polls.
	Poll resilience.PollConfig
}

// Provider implements transcription.Provider against AssemblyAI.
type Provider struct {
	client *rest.Client
	poll   resilience.PollConfig
	log    *logger.Logger
}

// New creates an AssemblyAI provider. An empty API key is a configuration error.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.MissingCredential(ProviderName)
	}
	client, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: util.Coalesce(cfg.BaseURL, defaultBaseURL),
		Timeout: util.Coalesce(cfg.Timeout, defaultTimeout),
		Auth:    httpclient.RawAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, apperrors.Configuration("assemblyai: " + err.Error())
	}
	poll := cfg.Poll
	poll.Operation = "assemblyai transcript"
	return &Provider{client: client, poll: poll, log: logger.WithComponent(ProviderName)}, nil
}

// NewFactory returns a provider.Factory that reads api_key, base_url,
// timeout, poll_interval, max_polls and the optional poll hook.
func NewFactory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		key, err := provider.APIKey(ProviderName, cfg)
		if err != nil {
			return nil, err
		}
		poll := resilience.PollConfig{
			Interval: util.Duration(cfg, "poll_interval", resilience.DefaultPollInterval),
			MaxPolls: util.Int(cfg, "max_polls", resilience.DefaultMaxPolls),
		}
		if hook, ok := cfg[OptionPollHook].(func(int, bool)); ok {
			poll.OnPoll = hook
		}
		return New(Config{
			APIKey:  key,
			BaseURL: util.String(cfg, "base_url"),
			Timeout: util.Duration(cfg, "timeout", defaultTimeout),
			Poll:    poll,
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.client != nil }

// Close releases idle connections.
func (p *Provider) Close(ctx context.Context) error { return p.client.Close(ctx) }

// Execute uploads (for local files), submits, and polls a transcript job.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	model := util.Coalesce(req.Model, defaultModel)

	audioURL := req.Audio.URL
	if !req.Audio.IsURL() {
		uploaded, err := p.upload(ctx, req.Audio.Path)
		if err != nil {
			return nil, err
		}
		audioURL = uploaded
	}

	job, err := p.submit(ctx, submitRequest{
		AudioURL:      audioURL,
		SpeechModel:   model,
		SpeakerLabels: req.SpeakerLabels,
		LanguageCode:  req.Language,
	})
	if err != nil {
		return nil, err
	}
	log := p.log.WithContext(ctx)
	log.Debug("transcript job submitted", logger.Fields("job_id", job.ID, logger.FieldModel, model))

	done, err := resilience.Poll(ctx, p.poll, func() (*transcriptResponse, bool, error) {
		return p.status(ctx, job.ID)
	})
	if err != nil {
		log.Warn("transcript job did not complete", logger.Fields("job_id", job.ID, logger.FieldError, err.Error()))
		return nil, err
	}

	return &transcription.Result{
		Transcript: transcript.FormatAssemblyAI(done.toResult()),
		Model:      model,
		CostRate:   transcription.CostRate(ProviderName, model),
		Duration:   done.AudioDuration,
	}, nil
}

func (p *Provider) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.Validation(fmt.Sprintf("assemblyai: open audio: %v", err))
	}
	defer f.Close()

	resp, err := rest.Post[json.RawMessage](ctx, p.client, uploadPath, f,
		rest.WithHeaders(map[string]string{"Content-Type": "application/octet-stream"}))
	if err != nil {
		return "", httpclient.ToProviderError(ProviderName, err)
	}
	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return "", apperrors.Parse(ProviderName, err)
	}
	if out.UploadURL == "" {
		return "", apperrors.EmptyResult(ProviderName, "upload_url")
	}
	return out.UploadURL, nil
}

func (p *Provider) submit(ctx context.Context, body submitRequest) (*transcriptResponse, error) {
	resp, err := rest.Post[json.RawMessage](ctx, p.client, transcriptPath, body)
	if err != nil {
		return nil, httpclient.ToProviderError(ProviderName, err)
	}
	var out transcriptResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, apperrors.Parse(ProviderName, err)
	}
	if out.ID == "" {
		return nil, apperrors.EmptyResult(ProviderName, "transcript id")
	}
	return &out, nil
}

// status reads the job once. A failed job stops polling with TRANSCRIPTION_FAILED.
func (p *Provider) status(ctx context.Context, id string) (*transcriptResponse, bool, error) {
	resp, err := rest.Get[json.RawMessage](ctx, p.client, transcriptPath+"/"+id)
	if err != nil {
		return nil, false, httpclient.ToProviderError(ProviderName, err)
	}
	var out transcriptResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return nil, false, apperrors.Parse(ProviderName, err)
	}
	if out.Status == StatusError || out.Error != "" {
		reason := util.Coalesce(out.Error, "job reported status error")
		return nil, false, apperrors.TranscriptionFailed(ProviderName, reason).WithDetail("job_id", id)
	}
	return &out, out.Status == StatusCompleted, nil
}

// --- internal AssemblyAI API types ---

type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeechModel   string `json:"speech_model,omitempty"`
	SpeakerLabels bool   `json:"speaker_labels"`
	LanguageCode  string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	Error         string      `json:"error"`
	Text          string      `json:"text"`
	AudioDuration float64     `json:"audio_duration"`
	Words         []word      `json:"words"`
	Utterances    []utterance `json:"utterances"`
}

type word struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

type utterance struct {
	Speaker string `json:"speaker"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
	Text    string `json:"text"`
}

func (t *transcriptResponse) toResult() transcript.AssemblyResult {
	r := transcript.AssemblyResult{Text: t.Text}
	for _, u := range t.Utterances {
		r.Utterances = append(r.Utterances, transcript.AssemblyUtterance{Speaker: u.Speaker, Start: u.Start, Text: u.Text})
	}
	for _, w := range t.Words {
		r.Words = append(r.Words, transcript.AssemblyWord{Text: w.Text, Start: w.Start})
	}
	return r
}
