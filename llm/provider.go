package llm

import "github.com/kbukum/shownotes/provider"

// Provider is the interface that LLM backends implement.
type Provider interface {
	provider.RequestResponse[CompletionRequest, CompletionResponse]
}

// NewRegistry creates a new provider registry for LLM providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]("llm")
}
