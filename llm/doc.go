// Package llm provides the uniform LLM call used to turn a transcript into
// show notes, plus a config-driven HTTP adapter for providers with their own
// wire format.
//
// The adapter works with any provider via the Dialect pattern, similar to how
// database/sql works with driver packages.
//
// # Architecture
//
// The llm package provides:
//   - Universal types: [CompletionRequest], [CompletionResponse], [Message], [Usage]
//   - [Dialect] interface: maps universal types to/from provider-specific HTTP format
//   - [Adapter]: composes the REST client and a Dialect into a complete LLM client
//   - [RegisterDialect] / [GetDialect]: dialects selectable by name from config
//   - [Generate]: the prompt + transcript call every provider answers
//
// Dialects live in sub-packages (claude, gemini, cohere). OpenAI-compatible
// services share one SDK-backed adapter in openaicompat, and the local
// Ollama server has its own streaming client in ollama.
//
// # Usage
//
//	import (
//	    "github.com/kbukum/shownotes/llm"
//	    _ "github.com/kbukum/shownotes/llm/claude" // registers "claude"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "claude",
//	    BaseURL: "https://api.anthropic.com",
//	    Model:   "claude-3-5-haiku-20241022",
//	    Auth:    httpclient.HeaderAuth("x-api-key", key),
//	})
//
//	resp, err := llm.Generate(ctx, adapter, "", prompt, transcript)
//
// Token counts a provider does not report are left nil in [Usage] so callers
// can tell a missing figure from a zero.
package llm
