package transcription

import (
	"strings"

	"github.com/kbukum/shownotes/transcript"
)

// Audio points at the audio to transcribe. Exactly one field is set.
type Audio struct {
	// URL is a publicly reachable http(s) URL.
	URL string `json:"url,omitempty" validate:"omitempty,url,excluded_with=Path"`
	// Path is a local file path.
	Path string `json:"path,omitempty" validate:"required_without=URL"`
}

// IsURL reports whether the audio is fetched by URL.
func (a Audio) IsURL() bool { return a.URL != "" }

// Source returns the URL or path, whichever is set.
func (a Audio) Source() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Path
}

// Request holds parameters for a transcription call.
type Request struct {
	Audio Audio `json:"audio"`
	// Model is the provider model id (e.g. "nova-2", "best", "base").
	Model string `json:"model"`
	// SpeakerLabels requests diarized, speaker-grouped output.
	SpeakerLabels bool `json:"speaker_labels,omitempty"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
}

// Result holds the normalised outcome of a transcription call.
type Result struct {
	Transcript transcript.Transcript `json:"-"`
	Model      string                `json:"model"`
	// CostRate is the model's price in dollars per minute; 0 when unpriced.
	CostRate float64 `json:"cost_rate"`
	// Duration is the audio length in seconds as reported by the provider, 0 if unknown.
	Duration float64 `json:"duration,omitempty"`
}

// Text returns the canonical transcript rendering.
func (r *Result) Text() string { return r.Transcript.String() }

// IsRemote reports whether s looks like an http(s) URL.
func IsRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
