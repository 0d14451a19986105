package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// BackendErrorResponse covers the two error body shapes the storefront
// backend has used: a nested {"error":{code,message}} object and the flat
// {"status":"fail","message":"..."} form.
type BackendErrorResponse struct {
	Error   json.RawMessage `json:"error"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. The code and message of a structured body are preserved;
// otherwise the raw body (truncated) becomes the message.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return mapBackendError(resp.StatusCode, "", fmt.Sprintf("unreadable body: %v", err), serviceName)
	}

	code, message := extractMessage(bodyBytes)
	if message == "" {
		message = strings.TrimSpace(string(bodyBytes))
		if len(message) > 200 {
			message = message[:200]
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return mapBackendError(resp.StatusCode, code, message, serviceName)
}

func extractMessage(body []byte) (code, message string) {
	var parsed BackendErrorResponse
	if json.Unmarshal(body, &parsed) != nil {
		return "", ""
	}
	if len(parsed.Error) > 0 {
		var nested nestedError
		if json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "" {
			return nested.Code, nested.Message
		}
		var flat string
		if json.Unmarshal(parsed.Error, &flat) == nil && flat != "" {
			return "", flat
		}
	}
	return "", parsed.Message
}

// mapBackendError translates a backend status code and message into an
// AppError that preserves the error semantics.
func mapBackendError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		e := apperrors.NotFound(serviceName, message)
		e.Message = qualifiedMsg
		return e
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusGone:
		return apperrors.Gone(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		if code == "" {
			code = "BACKEND_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  http.StatusBadGateway,
			Err:     fmt.Errorf("%s server error %d", serviceName, status),
		}
	default:
		if code == "" {
			code = "BACKEND_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

func unavailable(serviceName string, err error) error {
	e := apperrors.ServiceUnavailable(fmt.Sprintf("%s temporarily unavailable", serviceName))
	e.Err = fmt.Errorf("%w: %v", apperrors.ErrServiceUnavail, err)
	return e
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
