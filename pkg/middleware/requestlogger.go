package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader identifies the presentation-layer tab or window issuing the
// request.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a request-scoped logger in the context. It carries the
// method and path plus whatever the earlier middleware put in the context:
// correlation id, language and trace ids. Handlers read it back with
// logger.FromContext.
//
// Mount it after RequestLogging, Tracing and Language.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := r.Header.Get(SessionHeader); id != "" {
				ctx = logger.WithSessionID(ctx, id)
			}

			l := logger.WithContext(ctx, base).With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, l)))
		})
	}
}
