package transcript

import "strings"

const (
	assemblyLineChars = 80
	noTranscription   = "No transcription available."
)

// AssemblyUtterance is one speaker turn. Start is in milliseconds.
type AssemblyUtterance struct {
	Speaker string
	Start   int64
	Text    string
}

// AssemblyWord is one recognised word. Start is in milliseconds.
type AssemblyWord struct {
	Text  string
	Start int64
}

// AssemblyResult is the subset of a completed AssemblyAI job the formatter reads.
type AssemblyResult struct {
	Utterances []AssemblyUtterance
	Words      []AssemblyWord
	Text       string
}

// FormatAssemblyAI renders the richest representation present: utterances,
// then words packed into lines of at most 80 characters, then the raw text.
func FormatAssemblyAI(r AssemblyResult) Transcript {
	switch {
	case len(r.Utterances) > 0:
		segs := make([]Segment, 0, len(r.Utterances))
		for _, u := range r.Utterances {
			segs = append(segs, Segment{
				Start:   msToSeconds(u.Start),
				Speaker: u.Speaker,
				Text:    u.Text,
				Style:   StyleSpeakerClock,
			})
		}
		return Transcript{Segments: segs}
	case len(r.Words) > 0:
		return assemblyWords(r.Words)
	case r.Text != "":
		return Transcript{Segments: []Segment{{Text: r.Text}}}
	default:
		return Transcript{Segments: []Segment{{Text: noTranscription}}}
	}
}

func assemblyWords(words []AssemblyWord) Transcript {
	var (
		segs  []Segment
		line  strings.Builder
		start int64
	)
	flush := func() {
		if line.Len() > 0 {
			segs = append(segs, Segment{Start: msToSeconds(start), Text: line.String(), Style: StyleClock})
			line.Reset()
		}
	}
	for _, w := range words {
		if line.Len() > 0 && line.Len()+1+len(w.Text) > assemblyLineChars {
			flush()
		}
		if line.Len() == 0 {
			start = w.Start
		} else {
			line.WriteByte(' ')
		}
		line.WriteString(w.Text)
	}
	flush()
	return Transcript{Segments: segs}
}

// msToSeconds drops the sub-second part, matching the MM:SS rendering.
func msToSeconds(ms int64) float64 {
	if ms < 0 {
		return 0
	}
	return float64(ms / 1000)
}
