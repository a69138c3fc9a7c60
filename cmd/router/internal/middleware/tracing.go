package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/interceptors"
	"github.com/evidentbank/router/internal/tracing"
)

// TracingMiddleware opens the request-scoping OTel span for every inbound
// call, so the span internal/tracing.StartHTTPSpan-based evidence calls
// attach to is the real root span for the request rather than a second,
// disconnected trace-id scheme.
type TracingMiddleware struct {
	logger *zap.Logger
}

// NewTracingMiddleware creates a new tracing middleware
func NewTracingMiddleware(logger *zap.Logger) *TracingMiddleware {
	return &TracingMiddleware{
		logger: logger,
	}
}

// Middleware returns the HTTP middleware function
func (tm *TracingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartHTTPSpan(r.Context(), r.Method, r.URL.String())
		defer span.End()

		sc := span.SpanContext()
		traceID := sc.TraceID().String()
		spanID := sc.SpanID().String()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = traceID
		}
		ctx = interceptors.WithRequestID(ctx, requestID)

		w.Header().Set("X-Trace-ID", traceID)
		w.Header().Set("X-Span-ID", spanID)

		tm.logger.Debug("request received",
			zap.String("trace_id", traceID),
			zap.String("span_id", spanID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
