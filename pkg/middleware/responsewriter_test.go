package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

// bareWriter implements only http.ResponseWriter.
type bareWriter struct{ header http.Header }

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = http.Header{}
	}
	return b.header
}
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int)             {}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())

	rec.WriteHeader(http.StatusAccepted)
	rec.WriteHeader(http.StatusInternalServerError)
	n, _ := rec.Write([]byte("queued"))

	assert.Equal(t, http.StatusAccepted, rec.statusCode)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, rec.bytes)
}

func TestStatusRecorder_ReusesWrappedRecorder(t *testing.T) {
	inner := newStatusRecorder(httptest.NewRecorder())

	assert.Same(t, inner, newStatusRecorder(inner))
}

func TestStatusRecorder_FlushReachesStream(t *testing.T) {
	under := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	rec := newStatusRecorder(under)

	rec.Flush()
	assert.NoError(t, http.NewResponseController(rec).Flush())

	assert.Equal(t, 2, under.flushes)
}

func TestStatusRecorder_WithoutOptionalInterfaces(t *testing.T) {
	rec := newStatusRecorder(&bareWriter{})

	assert.NotPanics(t, rec.Flush)
	_, _, err := rec.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

func TestStatusRecorder_HijackDelegates(t *testing.T) {
	under := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}

	_, _, err := newStatusRecorder(under).Hijack()

	assert.NoError(t, err)
	assert.True(t, under.hijacked)
}
