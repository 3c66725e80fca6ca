package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lingocards/internal/api/shared"
	"github.com/phrazzld/lingocards/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that assigns every request a trace
// ID. A valid X-Trace-ID request header is reused, and the ID is echoed in
// the response. The request context carries a logger tagged with the ID.
// It should run early in the chain so that later handlers see the ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.WithTraceID(r.Context(), r.Header.Get(shared.TraceIDHeader))
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithContext(ctx, log)
			w.Header().Set(shared.TraceIDHeader, traceID)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
