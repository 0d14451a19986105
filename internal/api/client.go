// Package api is the client of the storefront REST backend. It tolerates the
// several response envelopes the backend has used and maps every failure to
// an AppError whose kind is transport, status or malformed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName = "storefront-api"
	tracerName  = "github.com/utafrali/storefront/internal/api"

	maxBodyBytes = 8 << 20
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "storefront_backend_request_duration_seconds",
	Help:    "Duration of REST backend calls, by operation and outcome kind.",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "kind"})

// TokenFunc returns the bearer token to attach, or "" for anonymous calls.
type TokenFunc func(ctx context.Context) string

// Client calls the REST backend.
type Client struct {
	doer    httpclient.Doer
	baseURL string
	token   TokenFunc
	logger  *slog.Logger
}

// New creates a backend client. baseURL includes the API prefix, e.g.
// "https://backend.example/api".
func New(doer httpclient.Doer, baseURL string, token TokenFunc, l *slog.Logger) *Client {
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	if l == nil {
		l = slog.Default()
	}
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  l,
	}
}

// call performs one backend request and returns the decoded JSON body, or
// nil for an empty body. query is appended verbatim so bracketed filter
// parameters reach the backend unescaped.
func (c *Client) call(ctx context.Context, op, method, path, query string, body any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.roundTrip(ctx, method, path, query, body)
	requestDuration.WithLabelValues(op, apperrors.Classify(err).String()).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.WithContext(ctx, c.logger).DebugContext(ctx, "backend call failed",
			slog.String("operation", op),
			slog.String("kind", apperrors.Classify(err).String()),
			slog.String("error", err.Error()),
		)
	}
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, method, path, query string, body any) (json.RawMessage, error) {
	target := c.baseURL + path
	if query != "" {
		target += "?" + strings.TrimPrefix(query, "?")
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if lang := logger.LanguageFromContext(ctx); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	ctx, span := tracing.StartClientSpan(ctx, tracerName, req)
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		tracing.EndClientSpan(span, 0, err)
		return nil, transportError(ctx, err)
	}
	tracing.EndClientSpan(span, resp.StatusCode, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, apperrors.Malformed(method+" "+path+" response", errors.New("invalid JSON"))
	}
	return data, nil
}

// transportError keeps errors that already carry a classification (an open
// breaker, a 5xx parsed by the breaker) and marks the rest as transport
// failures. Cancellation is returned unwrapped.
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Transport(err)
}
