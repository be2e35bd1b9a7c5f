package botapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alikaskat/calendar-bot/internal/logging"
)

// RequestLogger attaches a request-scoped logger to the context and records
// timing for every HTTP request. The webhook path is logged without the
// token segment.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"method", r.Method,
				"path", redactPath(r.URL.Path),
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

func redactPath(path string) string {
	const prefix = "/webhook/"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return prefix + "***"
	}
	return path
}
