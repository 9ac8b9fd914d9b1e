package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/shownotes/cost"
	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/observability"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/transcription"
	"github.com/kbukum/shownotes/transcription/assemblyai"
	"github.com/kbukum/shownotes/util"
	"github.com/kbukum/shownotes/validation"
)

// TranscribeRequest asks one provider to transcribe one audio source.
type TranscribeRequest struct {
	// RunID correlates log lines and spans; generated when empty.
	RunID    string              `json:"run_id,omitempty"`
	Provider string              `json:"provider" validate:"required"`
	Model    string              `json:"model,omitempty"`
	Audio    transcription.Audio `json:"audio"`
	// SpeakerLabels requests diarized output where the provider supports it.
	SpeakerLabels bool   `json:"speaker_labels,omitempty"`
	Language      string `json:"language,omitempty"`
	// DurationHint is the audio length in seconds measured by the caller.
	// Zero means unknown; the provider-reported duration is used instead.
	DurationHint float64 `json:"duration_hint,omitempty" validate:"gte=0"`
	// APIKey overrides the configured credential for this call.
	APIKey string `json:"-"`
	// Options override configured factory options for this call.
	Options map[string]any `json:"options,omitempty"`
}

// TranscribeResult is the canonical outcome of a transcription call.
type TranscribeResult struct {
	RunID      string                `json:"run_id"`
	Provider   string                `json:"provider"`
	Transcript string                `json:"transcript"`
	Model      string                `json:"model"`
	CostRate   float64               `json:"cost_rate"`
	Duration   float64               `json:"duration"`
	Cost       cost.Estimate         `json:"cost"`
	Result     *transcription.Result `json:"-"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// Transcribe validates req, runs the provider under the retry policy and
// prices the result. Cost lookups that fail produce a zero cost and a
// warning, never an error.
func (o *Orchestrator) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResult, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	ctx, runID, err := runContext(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	ctx, span := o.startSpan(ctx, "transcribe", runID, req.Provider)
	defer span.End()

	out, err := o.transcribe(ctx, runID, req)
	if err != nil {
		observability.Fail(ctx, err)
		return nil, err
	}
	observability.Annotate(ctx,
		observability.ModelKey.String(out.Model),
		observability.CostKey.Float64(out.Cost.Cost),
	)
	return out, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, runID string, req TranscribeRequest) (*TranscribeResult, error) {
	if !o.transcribers.Has(req.Provider) {
		return nil, apperrors.UnknownProvider("transcription", req.Provider)
	}
	log := o.log.WithContext(ctx)

	cfg := o.options(ctx, req.Provider, req.Options, req.APIKey)
	if _, ok := cfg["poll_interval"]; !ok {
		cfg["poll_interval"] = o.polling.Interval
	}
	if _, ok := cfg["max_polls"]; !ok {
		cfg["max_polls"] = o.polling.MaxPolls
	}
	cfg[assemblyai.OptionPollHook] = func(poll int, done bool) {
		o.metrics.RecordPoll(ctx, req.Provider)
		log.Debug("job polled", logger.Fields(logger.FieldProvider, req.Provider, "poll", poll, "done", done))
	}

	p, err := o.transcribers.Create(req.Provider, cfg)
	if err != nil {
		return nil, err
	}
	defer provider.Release(ctx, p)

	res, err := stack[transcription.Request, *transcription.Result](ctx, o, req.Provider)(p).Execute(ctx, transcription.Request{
		Audio:         req.Audio,
		Model:         req.Model,
		SpeakerLabels: req.SpeakerLabels,
		Language:      req.Language,
	})
	if err != nil {
		return nil, err
	}

	out := &TranscribeResult{
		RunID:      runID,
		Provider:   req.Provider,
		Transcript: res.Text(),
		Model:      util.Coalesce(res.Model, req.Model),
		CostRate:   res.CostRate,
		Duration:   req.DurationHint,
		Result:     res,
	}
	if out.Duration == 0 && res.Duration > 0 {
		out.Duration = res.Duration
		out.Warnings = append(out.Warnings, "duration hint missing; using provider-reported duration")
	}
	if out.Duration == 0 {
		out.Warnings = append(out.Warnings, "audio duration unknown; cost is zero")
	}

	est, err := o.rates.Transcription(req.Provider, out.Model, out.Duration)
	if errors.Is(err, cost.ErrRateNotFound) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("no rate for %s model %q; cost is zero", req.Provider, out.Model))
	} else if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	out.Cost = est
	o.metrics.RecordCost(ctx, req.Provider, out.Model, est.Cost)

	log.Info("transcription complete", logger.Fields(
		logger.FieldProvider, req.Provider,
		logger.FieldModel, out.Model,
		"segments", len(res.Transcript.Segments),
		"cost", est.Cost,
	))
	return out, nil
}
