package assemblyai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/resilience"
	"github.com/kbukum/shownotes/transcription"
)

type fakeAPI struct {
	t        *testing.T
	statuses []string
	final    string
	polls    atomic.Int32
	uploaded []byte
	submit   submitRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if got := r.Header.Get("Authorization"); got != "aai-key" {
		f.t.Errorf("expected raw key auth, got %q", got)
	}
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
		f.uploaded, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"upload_url":"https://cdn.assemblyai.com/upload/abc"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
		_ = json.NewDecoder(r.Body).Decode(&f.submit)
		_, _ = w.Write([]byte(`{"id":"job-1","status":"queued"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/job-1":
		n := int(f.polls.Add(1))
		status := f.statuses[min(n, len(f.statuses))-1]
		if status == StatusCompleted {
			_, _ = w.Write([]byte(f.final))
			return
		}
		_, _ = w.Write([]byte(`{"id":"job-1","status":"` + status + `"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestProvider(t *testing.T, api *fakeAPI, sleeps *[]time.Duration) *Provider {
	t.Helper()
	api.t = t
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	poll := resilience.DefaultPollConfig()
	poll.Sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	p, err := New(Config{APIKey: "aai-key", BaseURL: srv.URL, Poll: poll})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

const completed = `{
  "id": "job-1", "status": "completed", "audio_duration": 61,
  "text": "Hi there. Welcome.",
  "utterances": [
    {"speaker": "A", "start": 5300, "end": 6000, "text": "Hi there."},
    {"speaker": "B", "start": 61000, "end": 62000, "text": "Welcome."}
  ],
  "words": [{"text": "Hi", "start": 5300, "end": 5500}]
}`

func TestExecute_PollsUntilCompleted(t *testing.T) {
	var sleeps []time.Duration
	api := &fakeAPI{statuses: []string{"queued", "processing", "processing", "completed"}, final: completed}
	p := newTestProvider(t, api, &sleeps)

	res, err := p.Execute(context.Background(), transcription.Request{
		Audio:         transcription.Audio{URL: "https://example.com/ep.mp3"},
		SpeakerLabels: true,
		Language:      "en",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.polls.Load() != 4 {
		t.Errorf("expected 4 polls, got %d", api.polls.Load())
	}
	var total time.Duration
	for _, d := range sleeps {
		total += d
	}
	if total != 12*time.Second {
		t.Errorf("expected 12s of waiting, got %v", total)
	}
	if api.submit.AudioURL != "https://example.com/ep.mp3" || api.submit.SpeechModel != "best" ||
		!api.submit.SpeakerLabels || api.submit.LanguageCode != "en" {
		t.Errorf("unexpected submit body %+v", api.submit)
	}
	if res.Text() != "Speaker A (00:05): Hi there.\nSpeaker B (01:01): Welcome.\n" {
		t.Errorf("unexpected transcript %q", res.Text())
	}
	if res.Duration != 61 || res.CostRate <= 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestExecute_UploadsLocalFile(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "ep.mp3")
	if err := os.WriteFile(audio, []byte("ID3audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	var sleeps []time.Duration
	api := &fakeAPI{statuses: []string{"completed"}, final: `{"id":"job-1","status":"completed","text":"plain text"}`}
	p := newTestProvider(t, api, &sleeps)

	res, err := p.Execute(context.Background(), transcription.Request{Audio: transcription.Audio{Path: audio}, Model: "nano"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(api.uploaded) != "ID3audio" {
		t.Errorf("unexpected upload %q", api.uploaded)
	}
	if api.submit.AudioURL != "https://cdn.assemblyai.com/upload/abc" {
		t.Errorf("expected uploaded url to be submitted, got %q", api.submit.AudioURL)
	}
	if res.Text() != "plain text\n" || res.Model != "nano" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestExecute_JobFailure(t *testing.T) {
	tests := map[string]string{
		"error status": `{"id":"job-1","status":"error"}`,
		"error field":  `{"id":"job-1","status":"processing","error":"audio too short"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			var sleeps []time.Duration
			api := &fakeAPI{statuses: []string{"queued", "completed"}, final: body}
			p := newTestProvider(t, api, &sleeps)

			_, err := p.Execute(context.Background(), transcription.Request{Audio: transcription.Audio{URL: "https://x/a.mp3"}})
			if !apperrors.IsCode(err, apperrors.ErrCodeTranscriptionFailed) {
				t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
			}
			if apperrors.IsRetryable(err) {
				t.Error("job failures must not be retryable")
			}
			if api.polls.Load() != 2 {
				t.Errorf("expected polling to stop at the failing read, got %d polls", api.polls.Load())
			}
		})
	}
}

func TestExecute_Timeout(t *testing.T) {
	var sleeps []time.Duration
	api := &fakeAPI{statuses: []string{"processing"}}
	p := newTestProvider(t, api, &sleeps)

	_, err := p.Execute(context.Background(), transcription.Request{Audio: transcription.Audio{URL: "https://x/a.mp3"}})
	if !apperrors.IsCode(err, apperrors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if api.polls.Load() != 60 || len(sleeps) != 60 {
		t.Errorf("expected 60 polls and sleeps, got %d and %d", api.polls.Load(), len(sleeps))
	}
}

func TestFactory(t *testing.T) {
	if _, err := NewFactory()(map[string]any{}); !apperrors.IsCode(err, apperrors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	var seen []int
	p, err := NewFactory()(map[string]any{
		"api_key":       "k",
		"poll_interval": "5s",
		"max_polls":     10,
		OptionPollHook:  func(poll int, _ bool) { seen = append(seen, poll) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ap := p.(*Provider)
	if ap.poll.Interval != 5*time.Second || ap.poll.MaxPolls != 10 || ap.poll.OnPoll == nil {
		t.Errorf("unexpected poll config %+v", ap.poll)
	}
	ap.poll.OnPoll(1, false)
	if len(seen) != 1 {
		t.Error("expected hook to be wired")
	}
}
