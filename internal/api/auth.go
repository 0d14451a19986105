package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	raw, err := c.call(ctx, "auth.login", http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return "", err
	}

	var body struct {
		Token string `json:"token"`
	}
	for _, doc := range []json.RawMessage{raw, unwrapData(raw)} {
		if json.Unmarshal(doc, &body) == nil && body.Token != "" {
			return body.Token, nil
		}
	}
	return "", apperrors.Malformed("login response", errors.New("token missing"))
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, "auth.logout", http.MethodPost, "/auth/logout", "", nil)
	return err
}

// UpdateProfile applies a partial profile change and returns the updated
// user from "data.user" of the unwrapped body.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	raw, err := c.call(ctx, "auth.update_profile", http.MethodPut, "/auth/update-profile", "", update)
	if err != nil {
		return domain.User{}, err
	}

	doc, ok := path(raw, "data", "user")
	if !ok {
		doc, ok = path(raw, "data", "data", "user")
	}
	if !ok || !truthy(doc) {
		return domain.User{}, apperrors.Malformed("profile response", errors.New("user missing"))
	}
	var u domain.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return domain.User{}, apperrors.Malformed("profile response", err)
	}
	return u, nil
}
