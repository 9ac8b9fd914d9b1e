// Package transcription defines the speech-to-text provider contract shared
// by the deepgram, assemblyai and whisper adapters.
//
// Adapters are provider.RequestResponse[Request, *Result] values built by
// factories registered in a provider.Registry. Each adapter performs its own
// HTTP or subprocess I/O and normalises the provider payload with the
// transcript package before returning.
//
// # Backends
//
//   - transcription/deepgram: synchronous pre-recorded audio API
//   - transcription/assemblyai: asynchronous job API, polled to completion
//   - transcription/whisper: local whisper.cpp command line
package transcription
