package cost

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// ErrRateNotFound reports a provider or model missing from the rate tables.
// The accompanying Estimate has a zero Cost.
var ErrRateNotFound = errors.New("cost: rate not found")

// Precision is the number of decimal places costs are rounded to.
const Precision = 10

// Estimate is a derived cost figure for a single call.
type Estimate struct {
	Provider string
	Model    string
	// BilledQuantity is minutes of audio for transcription, tokens for LLM calls.
	BilledQuantity float64
	// Cost is in dollars.
	Cost float64
}

// Cents returns Cost expressed in cents.
func (e Estimate) Cents() float64 {
	return Round(e.Cost * 100)
}

// Estimator computes costs from loaded rate tables. It is read-only after
// construction and safe for concurrent use.
type Estimator struct {
	transcription map[string]map[string]float64
	llm           map[string]map[string]LLMRate
}

var defaultEstimator = sync.OnceValues(func() (*Estimator, error) {
	return Load(bytes.NewReader(embeddedRates))
})

// Default returns the estimator built from the embedded rate tables.
func Default() *Estimator {
	e, err := defaultEstimator()
	if err != nil {
		panic(err)
	}
	return e
}

// Round rounds x to Precision decimal places.
func Round(x float64) float64 {
	p := math.Pow10(Precision)
	return math.Round(x*p) / p
}

// ApproximateTokens counts whitespace-delimited words in text.
// It stands in for provider token counts when a response omits them.
func ApproximateTokens(text string) int {
	return len(strings.Fields(text))
}

// TranscriptionRate returns the dollars-per-minute rate for a model.
func (e *Estimator) TranscriptionRate(provider, model string) (float64, error) {
	models, ok := e.transcription[provider]
	if !ok {
		return 0, fmt.Errorf("%w: transcription provider %q", ErrRateNotFound, provider)
	}
	rate, ok := models[model]
	if !ok {
		return 0, fmt.Errorf("%w: %s model %q", ErrRateNotFound, provider, model)
	}
	return rate, nil
}

// LLMRates returns the per-million-token rates for a model.
func (e *Estimator) LLMRates(provider, model string) (LLMRate, error) {
	models, ok := e.llm[provider]
	if !ok {
		return LLMRate{}, fmt.Errorf("%w: llm provider %q", ErrRateNotFound, provider)
	}
	rate, ok := models[model]
	if !ok {
		return LLMRate{}, fmt.Errorf("%w: %s model %q", ErrRateNotFound, provider, model)
	}
	return rate, nil
}

// Transcription estimates the cost of transcribing durationSeconds of audio.
func (e *Estimator) Transcription(provider, model string, durationSeconds float64) (Estimate, error) {
	minutes := durationSeconds / 60
	est := Estimate{Provider: provider, Model: model, BilledQuantity: Round(minutes)}
	if durationSeconds < 0 || math.IsNaN(durationSeconds) {
		return est, fmt.Errorf("cost: invalid duration %v", durationSeconds)
	}
	rate, err := e.TranscriptionRate(provider, model)
	if err != nil {
		return est, err
	}
	est.Cost = Round(rate * minutes)
	return est, nil
}

// LLM estimates the cost of a completion from its token counts.
func (e *Estimator) LLM(provider, model string, inputTokens, outputTokens int) (Estimate, error) {
	est := Estimate{Provider: provider, Model: model, BilledQuantity: float64(inputTokens + outputTokens)}
	if inputTokens < 0 || outputTokens < 0 {
		return est, fmt.Errorf("cost: invalid token counts %d/%d", inputTokens, outputTokens)
	}
	rate, err := e.LLMRates(provider, model)
	if err != nil {
		return est, err
	}
	est.Cost = Round(float64(inputTokens)/1_000_000*rate.Input + float64(outputTokens)/1_000_000*rate.Output)
	return est, nil
}

// Providers lists the providers with a rate table of the given kind.
func (e *Estimator) Providers(kind Kind) []string {
	switch kind {
	case KindTranscription:
		return sortedKeys(e.transcription)
	case KindLLM:
		return sortedKeys(e.llm)
	}
	return nil
}

// Models lists the models priced for a provider, sorted by name.
func (e *Estimator) Models(kind Kind, provider string) []string {
	switch kind {
	case KindTranscription:
		return sortedKeys(e.transcription[provider])
	case KindLLM:
		return sortedKeys(e.llm[provider])
	}
	return nil
}
