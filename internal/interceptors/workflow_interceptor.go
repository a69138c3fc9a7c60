package interceptors

import (
	"context"
	"net/http"
)

type contextKey string

// SessionIDKey is the context key under which WithSessionID stores a
// session id for RequestIDRoundTripper to forward.
const SessionIDKey contextKey = "session_id"

// RequestIDKey is the context key for the per-request correlation id.
const RequestIDKey contextKey = "request_id"

// RequestIDRoundTripper propagates the session id and request id from the
// context onto outgoing HTTP requests, so FAQ-index, embedding and LLM
// sidecar calls can be correlated back to the originating route decision
// in logs.
type RequestIDRoundTripper struct {
	base http.RoundTripper
}

// NewWorkflowHTTPRoundTripper wraps base, defaulting to http.DefaultTransport.
func NewWorkflowHTTPRoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RequestIDRoundTripper{base: base}
}

func (rt *RequestIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if sid, ok := req.Context().Value(SessionIDKey).(string); ok && sid != "" {
		req.Header.Set("X-Session-ID", sid)
	}
	if rid, ok := req.Context().Value(RequestIDKey).(string); ok && rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	return rt.base.RoundTrip(req)
}

// WithSessionID attaches a session id to ctx for downstream evidence calls.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithRequestID attaches a request id to ctx for downstream evidence calls.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
