package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/utafrali/storefront/pkg/logger"
)

// Supported lists the storefront languages in preference order. English is
// the fallback.
var Supported = []language.Tag{language.English, language.Arabic}

var matcher = language.NewMatcher(Supported)

// Language resolves the request language from the "lang" query parameter,
// then the session's stored preference, then Accept-Language, and stores the
// base code ("en" or "ar") in the context via logger.WithLanguage.
func Language(preferred func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if q := r.URL.Query().Get("lang"); q != "" {
				lang = Match(q)
			}
			if lang == "" && preferred != nil {
				lang = Match(preferred(r))
			}
			if lang == "" {
				if h := r.Header.Get("Accept-Language"); h != "" {
					lang = Match(h)
				}
			}
			if lang == "" {
				lang = "en"
			}

			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(logger.WithLanguage(r.Context(), lang)))
		})
	}
}

// Match maps a language tag list (as found in Accept-Language or a query
// parameter) to a supported base code, or "" when nothing matches.
func Match(tags string) string {
	if tags == "" {
		return ""
	}
	parsed, _, err := language.ParseAcceptLanguage(tags)
	if err != nil || len(parsed) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(parsed...)
	if conf == language.No {
		return ""
	}
	base, _ := Supported[idx].Base()
	return base.String()
}
