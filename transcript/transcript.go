package transcript

import (
	"fmt"
	"math"
	"strings"
)

// Style selects how a segment is rendered.
type Style int

const (
	// StylePlain renders the text alone.
	StylePlain Style = iota
	// StyleClock renders "[MM:SS] text".
	StyleClock
	// StyleSpeakerClock renders "Speaker X (MM:SS): text", or "(MM:SS): text"
	// when the speaker is unknown.
	StyleSpeakerClock
	// StyleSpeaker renders "Speaker X: text".
	StyleSpeaker
)

// Segment is one timestamped run of transcript text.
type Segment struct {
	// Start is the offset into the audio in seconds.
	Start   float64
	Speaker string
	Text    string
	Style   Style
	// Continues joins the segment to the previous line instead of starting a new one.
	Continues bool
}

// String renders the segment without a line terminator.
func (s Segment) String() string {
	switch s.Style {
	case StyleClock:
		return "[" + Clock(s.Start) + "] " + s.Text
	case StyleSpeakerClock:
		if s.Speaker == "" {
			return "(" + Clock(s.Start) + "): " + s.Text
		}
		return "Speaker " + s.Speaker + " (" + Clock(s.Start) + "): " + s.Text
	case StyleSpeaker:
		return "Speaker " + s.Speaker + ": " + s.Text
	default:
		return s.Text
	}
}

// Transcript is an ordered sequence of segments. It is never mutated once built.
type Transcript struct {
	Segments []Segment
}

// String renders the transcript. Every line ends with a newline.
func (t Transcript) String() string {
	var b strings.Builder
	for i, seg := range t.Segments {
		if seg.Continues && i > 0 {
			b.WriteByte(' ')
		} else if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seg.String())
	}
	if len(t.Segments) > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// Text is the canonical rendering passed to prompts and LLM calls.
func (t Transcript) Text() string { return t.String() }

// Len returns the number of segments.
func (t Transcript) Len() int { return len(t.Segments) }

// End returns the start offset of the last segment, or 0 for an empty transcript.
func (t Transcript) End() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].Start
}

// Clock formats seconds as MM:SS, truncating fractions.
// Minutes are not wrapped into hours, so long audio renders as e.g. 125:07.
func Clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
