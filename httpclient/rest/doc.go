// Package rest provides a JSON-focused client built on httpclient.
//
// It adds typed convenience methods for the JSON endpoints every provider
// exposes:
//
//	client, _ := rest.New(httpclient.Config{
//	    BaseURL: "https://api.assemblyai.com",
//	    Auth:    httpclient.RawAuth(apiKey),
//	})
//
//	job, err := rest.Post[transcriptJob](ctx, client, "/v2/transcript", submit)
//	status, err := rest.Get[transcriptJob](ctx, client, "/v2/transcript/"+job.Data.ID)
//
// A body that cannot be decoded into T yields an error wrapping
// httpclient.ErrDecode.
package rest
