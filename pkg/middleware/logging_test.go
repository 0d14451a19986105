package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

func TestRequestLogging_CorrelationID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.NewWithWriter("storefront", "debug", &bytes.Buffer{}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = logger.CorrelationIDFromContext(r.Context())
		}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(CorrelationHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(CorrelationHeader, "from-ui-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "from-ui-1", seen)
		assert.Equal(t, "from-ui-1", rec.Header().Get(CorrelationHeader))
	})
}

func TestRequestLogging_Levels(t *testing.T) {
	tests := []struct {
		path   string
		status int
		level  string
	}{
		{"/api/v1/products", http.StatusOK, "INFO"},
		{"/api/v1/cart/items", http.StatusBadRequest, "WARN"},
		{"/api/v1/cart", http.StatusServiceUnavailable, "ERROR"},
		{"/health/ready", http.StatusOK, "DEBUG"},
		{"/health/ready", http.StatusServiceUnavailable, "ERROR"},
		{"/metrics", http.StatusOK, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			h := RequestLogging(logger.NewWithWriter("storefront", "debug", &buf))(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			out := lastLogLine(t, &buf)
			require.Equal(t, "http request", out["msg"])
			assert.Equal(t, tt.level, out["level"])
			assert.Equal(t, float64(tt.status), out["status"])
			assert.Equal(t, tt.path, out["path"])
		})
	}
}
