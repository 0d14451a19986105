package middleware

import (
	"context"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// SessionChecker reports whether the runtime currently holds a valid,
// unexpired bearer token.
type SessionChecker func(ctx context.Context) bool

// RequireSession rejects requests with 401 when no valid session exists.
// Routes that call authenticated backend endpoints (orders, profile) mount it.
func RequireSession(check SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !check(r.Context()) {
				httputil.WriteError(w, r, apperrors.Unauthorized("login required"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
