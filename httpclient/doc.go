// Package httpclient provides the HTTP transport shared by every provider
// adapter: per-request authentication, status classification and streaming.
//
// Retrying is deliberately absent here. Provider calls are retried as a whole
// by the orchestrator so a single policy covers submission, polling and
// decoding.
//
// Subpackages provide protocol-specific convenience layers:
//
//   - rest: JSON-focused client with generic typed methods
//   - ndjson: lazy decoder for newline-delimited JSON streams
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.deepgram.com",
//	    Timeout: 5 * time.Minute,
//	    Auth:    httpclient.SchemeAuth("Token", apiKey),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/v1/listen",
//	    Body:   map[string]string{"url": audioURL},
//	})
//	if err != nil {
//	    return httpclient.ToProviderError("deepgram", err)
//	}
package httpclient
