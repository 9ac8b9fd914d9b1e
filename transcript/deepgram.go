package transcript

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const deepgramLineWords = 30

// DeepgramWord is one recognised word from a Deepgram alternative.
type DeepgramWord struct {
	Word  string
	Start float64
	// Speaker is set when diarization was requested.
	Speaker *int
}

// FormatDeepgram renders Deepgram words.
//
// With speakerLabels set and speaker data present, contiguous words from the
// same speaker form one "Speaker N: ..." line. Otherwise words are written in
// lines of at most 30, with a [MM:SS] marker before every 30th word and before
// capitalised words, and a line break after sentence-ending punctuation.
func FormatDeepgram(words []DeepgramWord, speakerLabels bool) Transcript {
	if speakerLabels && hasSpeakers(words) {
		return deepgramBySpeaker(words)
	}
	return deepgramByTime(words)
}

func hasSpeakers(words []DeepgramWord) bool {
	for _, w := range words {
		if w.Speaker != nil {
			return true
		}
	}
	return false
}

func deepgramByTime(words []DeepgramWord) Transcript {
	var (
		segs    []Segment
		cur     *Segment
		buf     []string
		newLine = true
	)
	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(buf, " ")
			segs = append(segs, *cur)
		}
		cur, buf = nil, nil
	}

	for i, w := range words {
		stamp := i%deepgramLineWords == 0 || startsUpper(w.Word)
		if stamp || cur == nil {
			flush()
			cur = &Segment{Start: w.Start, Style: StylePlain, Continues: !newLine}
			if stamp {
				cur.Style = StyleClock
			}
		}
		buf = append(buf, w.Word)
		newLine = false

		if endsSentence(w.Word) || i%deepgramLineWords == deepgramLineWords-1 || i == len(words)-1 {
			flush()
			newLine = true
		}
	}
	flush()
	return Transcript{Segments: segs}
}

func deepgramBySpeaker(words []DeepgramWord) Transcript {
	var (
		segs    []Segment
		buf     []string
		speaker = -1
		start   float64
	)
	flush := func() {
		if len(buf) > 0 {
			segs = append(segs, Segment{
				Start:   start,
				Speaker: strconv.Itoa(speaker),
				Text:    strings.Join(buf, " "),
				Style:   StyleSpeaker,
			})
		}
		buf = nil
	}

	for _, w := range words {
		sp := speaker
		if w.Speaker != nil {
			sp = *w.Speaker
		} else if sp < 0 {
			sp = firstSpeaker(words)
		}
		if sp != speaker || len(buf) == 0 {
			flush()
			speaker, start = sp, w.Start
		}
		buf = append(buf, w.Word)
	}
	flush()
	return Transcript{Segments: segs}
}

func firstSpeaker(words []DeepgramWord) int {
	for _, w := range words {
		if w.Speaker != nil {
			return *w.Speaker
		}
	}
	return 0
}

func startsUpper(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}
