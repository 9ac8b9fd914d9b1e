package openaicompat

import "sort"

// Profile describes one OpenAI-compatible service.
type Profile struct {
	// Name is the provider id (e.g. "groq").
	Name string
	// BaseURL is the API root the SDK appends /chat/completions to.
	BaseURL string
	// DefaultModel is used when neither the request nor the config names one.
	DefaultModel string
}

// Known profiles, keyed by provider id.
var profiles = map[string]Profile{
	"chatgpt":   {Name: "chatgpt", BaseURL: "https://api.openai.com/v1", DefaultModel: "gpt-4o-mini"},
	"deepseek":  {Name: "deepseek", BaseURL: "https://api.deepseek.com", DefaultModel: "deepseek-chat"},
	"groq":      {Name: "groq", BaseURL: "https://api.groq.com/openai/v1", DefaultModel: "llama-3.3-70b-versatile"},
	"together":  {Name: "together", BaseURL: "https://api.together.xyz/v1", DefaultModel: "meta-llama/Llama-3.3-70B-Instruct-Turbo"},
	"fireworks": {Name: "fireworks", BaseURL: "https://api.fireworks.ai/inference/v1", DefaultModel: "accounts/fireworks/models/llama-v3p3-70b-instruct"},
	"mistral":   {Name: "mistral", BaseURL: "https://api.mistral.ai/v1", DefaultModel: "mistral-small-latest"},
}

// Lookup returns the profile registered under name.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Profiles returns the sorted names of all known profiles.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
