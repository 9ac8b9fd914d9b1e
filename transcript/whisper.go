package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	lrcLineWords     = 15
	jsonEntriesChunk = 35
)

// WhisperInput is whisper.cpp output in one of its two supported formats.
// The caller picks the variant; payloads are never sniffed.
type WhisperInput interface {
	whisperInput()
}

// WhisperLRC is LRC text as written by whisper.cpp -olrc.
type WhisperLRC string

// WhisperJSON is the transcription array written by whisper.cpp -oj.
type WhisperJSON []WhisperEntry

func (WhisperLRC) whisperInput()  {}
func (WhisperJSON) whisperInput() {}

// WhisperEntry is one whisper.cpp JSON segment.
type WhisperEntry struct {
	Text       string            `json:"text"`
	Timestamps WhisperTimestamps `json:"timestamps"`
}

// WhisperTimestamps holds "HH:MM:SS,mmm" offsets.
type WhisperTimestamps struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FormatWhisper renders whisper.cpp output. A nil input renders empty.
func FormatWhisper(in WhisperInput) Transcript {
	switch v := in.(type) {
	case WhisperLRC:
		return formatLRC(string(v))
	case WhisperJSON:
		return formatWhisperJSON(v)
	default:
		return Transcript{}
	}
}

// ParseLRC wraps LRC file contents.
func ParseLRC(data []byte) WhisperInput {
	return WhisperLRC(data)
}

// ParseWhisperJSON decodes a whisper.cpp JSON file. Both the full document
// ({"transcription": [...]}) and a bare segment array are accepted.
func ParseWhisperJSON(data []byte) (WhisperInput, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []WhisperEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("transcript: decode whisper json: %w", err)
		}
		return WhisperJSON(entries), nil
	}
	var doc struct {
		Transcription []WhisperEntry `json:"transcription"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("transcript: decode whisper json: %w", err)
	}
	return WhisperJSON(doc.Transcription), nil
}

var (
	lrcMetadata = regexp.MustCompile(`^\[[a-zA-Z]+:[^\]]*\]$`)
	lrcStamp    = regexp.MustCompile(`\[(\d{2,}):(\d{2})(?:\.\d+)?\]`)
)

type lrcChunk struct {
	stamp    float64
	hasStamp bool
	words    []string
}

// formatLRC drops metadata lines, then re-flows the words of the whole
// document into lines of at most 15 words. Each line is labelled with the
// most recent timestamp seen when it is closed.
func formatLRC(text string) Transcript {
	var chunks []lrcChunk
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || lrcMetadata.MatchString(line) {
			continue
		}
		chunks = append(chunks, splitLRCLine(line)...)
	}

	var (
		segs    []Segment
		pending []string
		current float64
	)
	flush := func() {
		if len(pending) > 0 {
			segs = append(segs, Segment{Start: current, Text: strings.Join(pending, " "), Style: StyleClock})
			pending = nil
		}
	}
	for _, c := range chunks {
		if c.hasStamp {
			current = c.stamp
		}
		for _, w := range c.words {
			pending = append(pending, w)
			if len(pending) == lrcLineWords {
				flush()
			}
		}
	}
	flush()
	return Transcript{Segments: segs}
}

// splitLRCLine cuts a line into chunks at every timestamp tag.
func splitLRCLine(line string) []lrcChunk {
	var chunks []lrcChunk
	locs := lrcStamp.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 || locs[0][0] > 0 {
		end := len(line)
		if len(locs) > 0 {
			end = locs[0][0]
		}
		if words := strings.Fields(line[:end]); len(words) > 0 {
			chunks = append(chunks, lrcChunk{words: words})
		}
	}
	for i, loc := range locs {
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		mins, _ := strconv.Atoi(line[loc[2]:loc[3]])
		secs, _ := strconv.Atoi(line[loc[4]:loc[5]])
		chunks = append(chunks, lrcChunk{
			stamp:    float64(mins*60 + secs),
			hasStamp: true,
			words:    strings.Fields(line[loc[1]:end]),
		})
	}
	return chunks
}

func formatWhisperJSON(entries WhisperJSON) Transcript {
	var segs []Segment
	for i := 0; i < len(entries); i += jsonEntriesChunk {
		end := min(i+jsonEntriesChunk, len(entries))
		var b strings.Builder
		for _, e := range entries[i:end] {
			b.WriteString(e.Text)
		}
		segs = append(segs, Segment{
			Start: whisperOffset(entries[i].Timestamps.From),
			Text:  strings.Join(strings.Fields(b.String()), " "),
			Style: StyleClock,
		})
	}
	return Transcript{Segments: segs}
}

// whisperOffset parses "HH:MM:SS,mmm" into whole seconds; hours fold into minutes.
func whisperOffset(ts string) float64 {
	ts, _, _ = strings.Cut(ts, ",")
	ts, _, _ = strings.Cut(ts, ".")
	parts := strings.Split(ts, ":")
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return float64(total)
}
