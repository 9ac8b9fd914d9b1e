// Package transcript converts provider-shaped speech-to-text output into one
// canonical, timestamped transcript.
//
// Each provider has its own formatter:
//
//   - FormatDeepgram: word lists, rendered either timestamp-interleaved or
//     grouped by speaker
//   - FormatAssemblyAI: utterances, then words, then raw text
//   - FormatWhisper: whisper.cpp LRC text or JSON segments, selected by the
//     WhisperInput variant the caller constructs
//
// Formatters are pure: the same input always renders the same bytes.
package transcript
