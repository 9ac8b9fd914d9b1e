package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/shownotes/cost"
	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/llm"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/observability"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/util"
	"github.com/kbukum/shownotes/validation"
)

// GenerateRequest asks one LLM provider to answer a prompt about a transcript.
type GenerateRequest struct {
	RunID    string `json:"run_id,omitempty"`
	Provider string `json:"provider" validate:"required"`
	// Model falls back to the provider's configured or default model.
	Model      string `json:"model,omitempty"`
	Prompt     string `json:"prompt" validate:"required"`
	Transcript string `json:"transcript"`
	// APIKey overrides the configured credential for this call.
	APIKey  string         `json:"-"`
	Options map[string]any `json:"options,omitempty"`
}

// GenerateResult is the outcome of a generation call.
type GenerateResult struct {
	RunID    string        `json:"run_id"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Content  string        `json:"content"`
	Usage    llm.Usage     `json:"usage"`
	Cost     cost.Estimate `json:"cost"`
	// Approximated is set when token counts missing from the response were
	// replaced by whitespace word counts for the cost figure.
	Approximated bool     `json:"approximated,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Generate sends the prompt followed by the transcript as one user message,
// retrying per policy, and prices the usage.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	ctx, runID, err := runContext(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	ctx, span := o.startSpan(ctx, "generate", runID, req.Provider)
	defer span.End()

	out, err := o.generate(ctx, runID, req)
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

func (o *Orchestrator) generate(ctx context.Context, runID string, req GenerateRequest) (*GenerateResult, error) {
	if !o.generators.Has(req.Provider) {
		return nil, apperrors.UnknownProvider("llm", req.Provider)
	}

	cfg := o.options(ctx, req.Provider, req.Options, req.APIKey)
	p, err := o.generators.Create(req.Provider, cfg)
	if err != nil {
		return nil, err
	}
	defer provider.Release(ctx, p)

	model := util.Coalesce(req.Model, util.String(cfg, "model"))
	wrapped := stack[llm.CompletionRequest, llm.CompletionResponse](ctx, o, req.Provider)(p)

	resp, err := llm.Generate(ctx, wrapped, model, req.Prompt, req.Transcript)
	if err != nil {
		return nil, err
	}

	out := &GenerateResult{
		RunID:    runID,
		Provider: req.Provider,
		Model:    util.Coalesce(resp.Model, model),
		Content:  resp.Content,
		Usage:    resp.Usage,
	}

	in, outTokens := tokenCounts(resp.Usage, req.Prompt+"\n"+req.Transcript, resp.Content)
	if !resp.Usage.Complete() {
		out.Approximated = true
		out.Warnings = append(out.Warnings, "token usage not reported; counts approximated from text")
	}

	// Rate tables key on the requested model id; providers often answer
	// with a dated variant.
	rateModel := util.Coalesce(model, out.Model)
	est, err := o.rates.LLM(req.Provider, rateModel, in, outTokens)
	if errors.Is(err, cost.ErrRateNotFound) && rateModel != out.Model {
		rateModel = out.Model
		est, err = o.rates.LLM(req.Provider, rateModel, in, outTokens)
	}
	if errors.Is(err, cost.ErrRateNotFound) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("no rate for %s model %q; cost is zero", req.Provider, rateModel))
	} else if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	out.Cost = est
	o.metrics.RecordCost(ctx, req.Provider, rateModel, est.Cost)

	o.log.WithContext(ctx).Info("generation complete", logger.Fields(
		logger.FieldProvider, req.Provider,
		logger.FieldModel, out.Model,
		"input_tokens", in,
		"output_tokens", outTokens,
		"approximated", out.Approximated,
		"cost", est.Cost,
	))
	return out, nil
}

// tokenCounts returns the reported counts, approximating any that are missing.
func tokenCounts(u llm.Usage, input, output string) (int, int) {
	in := cost.ApproximateTokens(input)
	if u.InputTokens != nil {
		in = *u.InputTokens
	}
	out := cost.ApproximateTokens(output)
	if u.OutputTokens != nil {
		out = *u.OutputTokens
	}
	return in, out
}
