package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name     string
		valid    bool
		wantCode int
	}{
		{"valid session passes", true, http.StatusOK},
		{"missing session rejected", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireSession(func(context.Context) bool { return tt.valid })(okHandler())
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			if !tt.valid {
				assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}
