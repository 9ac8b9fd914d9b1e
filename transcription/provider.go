package transcription

import (
	"github.com/kbukum/shownotes/cost"
	"github.com/kbukum/shownotes/provider"
)

// Provider is the interface that transcription backends implement.
type Provider interface {
	provider.RequestResponse[Request, *Result]
}

// NewRegistry creates a new provider registry for transcription providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]("transcription")
}

// CostRate returns the dollars-per-minute price of model, or 0 when the
// rate tables do not list it.
func CostRate(name, model string) float64 {
	rate, err := cost.Default().TranscriptionRate(name, model)
	if err != nil {
		return 0
	}
	return rate
}
