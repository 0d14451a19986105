package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("connection reset")

	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "p1"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"already exists", AlreadyExists("favorite", "id", "p1"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
		{"invalid input", InvalidInput("quantity must be at least 1"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("token expired"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("channel cartUpdated is published by the session"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("order already cancelled"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"gone", Gone("promo expired"), "GONE", http.StatusGone, ErrGone},
		{"service unavailable", ServiceUnavailable("backend temporarily unavailable"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
		{"transport", Transport(cause), "TRANSPORT_ERROR", http.StatusBadGateway, ErrTransport},
		{"malformed", Malformed("cart", cause), "MALFORMED_RESPONSE", http.StatusBadGateway, ErrMalformed},
		{"internal", Internal(cause), "INTERNAL_ERROR", http.StatusInternalServerError, cause},
		{"rate limited", RateLimited(), "RATE_LIMITED", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	assert.Equal(t, "product with id p1 not found", NotFound("product", "p1").Message)
}

func TestAppError_Error(t *testing.T) {
	withCause := &AppError{Code: "TRANSPORT_ERROR", Message: "cart", Err: fmt.Errorf("timeout")}
	bare := &AppError{Code: "INVALID_INPUT", Message: "bad color"}

	assert.Equal(t, "TRANSPORT_ERROR: cart: timeout", withCause.Error())
	assert.Equal(t, "INVALID_INPUT: bad color", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrConflict, ErrGone, ErrServiceUnavail, ErrTransport, ErrMalformed, ErrRateLimited,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v is %v", a, b)
			}
		}
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(NotFound("order", "o1"), "cancel order")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancel order: ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	tests := map[error]int{
		ErrNotFound:       http.StatusNotFound,
		ErrConflict:       http.StatusConflict,
		ErrInvalidInput:   http.StatusBadRequest,
		ErrUnauthorized:   http.StatusUnauthorized,
		ErrForbidden:      http.StatusForbidden,
		ErrServiceUnavail: http.StatusServiceUnavailable,
		ErrTransport:      http.StatusBadGateway,
		ErrMalformed:      http.StatusBadGateway,
	}
	for sentinel, want := range tests {
		assert.Equal(t, want, HTTPStatus(fmt.Errorf("fetch cart: %w", sentinel)), sentinel.Error())
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"transport", Transport(fmt.Errorf("timeout")), KindTransport},
		{"breaker open", ServiceUnavailable("circuit open"), KindTransport},
		{"malformed", Malformed("product", fmt.Errorf("bad json")), KindMalformed},
		{"not found", NotFound("product", "p1"), KindStatus},
		{"wrapped status", fmt.Errorf("fetch cart: %w", Unauthorized("expired")), KindStatus},
		{"wrapped transport", fmt.Errorf("fetch cart: %w", Transport(fmt.Errorf("reset"))), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "malformed", KindMalformed.String())
	assert.Equal(t, "none", KindNone.String())
}
