package httpclient

import "net/http"

// Auth is a credential sent as a single request header. Providers differ
// only in header name and value prefix:
//
//	Authorization: Bearer sk-...   BearerAuth (OpenAI-compatible, Cohere)
//	Authorization: Token dg-...    SchemeAuth("Token", key) (Deepgram)
//	Authorization: aai-...         RawAuth (AssemblyAI)
//	x-api-key: ant-...             HeaderAuth("x-api-key", key) (Anthropic)
type Auth struct {
	Header string
	Value  string
}

// BearerAuth sends "Authorization: Bearer <token>".
func BearerAuth(token string) *Auth { return SchemeAuth("Bearer", token) }

// SchemeAuth sends "Authorization: <scheme> <token>".
func SchemeAuth(scheme, token string) *Auth {
	return &Auth{Header: "Authorization", Value: scheme + " " + token}
}

// RawAuth sends the token as the whole Authorization value.
func RawAuth(token string) *Auth { return &Auth{Header: "Authorization", Value: token} }

// HeaderAuth sends the key in its own header.
func HeaderAuth(header, key string) *Auth { return &Auth{Header: header, Value: key} }

func (a *Auth) apply(req *http.Request) {
	if a == nil || a.Header == "" {
		return
	}
	req.Header.Set(a.Header, a.Value)
}
