package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

// chainedHandler mounts the request middleware in router order and logs one
// line from the handler through the request-scoped logger.
func chainedHandler(buf *bytes.Buffer, preferred string) http.Handler {
	base := logger.NewWithWriter("storefront", "info", buf)
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handled")
	})
	h = RequestLogger(base)(h)
	h = Language(func(*http.Request) string { return preferred })(h)
	h = Tracing("storefront")(h)
	return h
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestRequestLogger_EnrichesFromContext(t *testing.T) {
	setupTestTracer(t)
	var buf bytes.Buffer

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req.Header.Set(SessionHeader, "tab-3")
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-42"))
	chainedHandler(&buf, "ar").ServeHTTP(httptest.NewRecorder(), req)

	out := lastLogLine(t, &buf)
	assert.Equal(t, "handled", out["msg"])
	assert.Equal(t, "storefront", out["service"])
	assert.Equal(t, "corr-42", out["correlation_id"])
	assert.Equal(t, "tab-3", out["session_id"])
	assert.Equal(t, "ar", out["language"])
	assert.Equal(t, "POST", out["method"])
	assert.Equal(t, "/api/v1/cart/items", out["path"])
	assert.Len(t, out["trace_id"], 32)
	assert.Len(t, out["span_id"], 16)
}

func TestRequestLogger_OmitsMissingFields(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)

	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handled")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil))

	out := lastLogLine(t, &buf)
	assert.NotContains(t, out, "correlation_id")
	assert.NotContains(t, out, "session_id")
	assert.NotContains(t, out, "language")
	assert.NotContains(t, out, "trace_id")
	assert.Equal(t, "/api/v1/favorites", out["path"])
}

func TestFromContext_DefaultsWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NotNil(t, logger.FromContext(req.Context()))
}
