package llm

import (
	"context"

	"github.com/kbukum/shownotes/provider"
)

// Generate sends prompt and transcript as one user message, joined by a
// newline, to model. It accepts any RequestResponse so it works with
// middleware-wrapped providers.
func Generate(ctx context.Context, p provider.RequestResponse[CompletionRequest, CompletionResponse], model, prompt, transcript string) (CompletionResponse, error) {
	return p.Execute(ctx, NewGenerateRequest(model, prompt, transcript))
}

// NewGenerateRequest builds the single-message request Generate sends.
func NewGenerateRequest(model, prompt, transcript string) CompletionRequest {
	return CompletionRequest{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Content: prompt + "\n" + transcript}},
	}
}

// SplitSystem separates system messages from the conversation, joining them
// (and the request's SystemPrompt) with blank lines. Dialects whose wire
// format carries the system prompt outside the message list use it.
func SplitSystem(req CompletionRequest) (string, []Message) {
	system := req.SystemPrompt
	msgs := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		msgs = append(msgs, m)
	}
	return system, msgs
}
