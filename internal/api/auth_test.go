package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "a@b.co", body["email"])
		writeBody(w, http.StatusOK, `{"token": "jwt-token"}`)
	}), "")

	token, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
}

func TestClient_LoginMissingToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"status": "success"}`)
	}), "")

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "secret1"})
	assert.Equal(t, apperrors.KindMalformed, apperrors.Classify(err))
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"message": "Incorrect email or password"}`)
	}), "")

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Incorrect email or password")
}

func TestClient_UpdateProfile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/auth/update-profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeBody(w, http.StatusOK, `{"data": {"user": {"_id": "u1", "name": "Sara", "email": "s@x.io"}}}`)
	}), "tok")

	u, err := c.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "Sara"})
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "u1", Name: "Sara", Email: "s@x.io"}, u)
}

func TestClient_Logout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}), "tok")

	assert.NoError(t, c.Logout(context.Background()))
}
