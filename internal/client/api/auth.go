package api

import (
	"context"
	"errors"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// ErrNoToken is returned by Login when the server response carries no
// usable session token.
var ErrNoToken = errors.New("api: login response contained no token")

// Login authenticates with email and password, persists the returned
// bearer token, and returns the raw user record the server attached to
// the response (shape varies; callers normalize it).
func (c *Client) Login(ctx context.Context, email, password string) (models.RawRecord, error) {
	body, err := c.Post(ctx, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	obj, _ := body.(map[string]any)
	token, _ := obj["token"].(string)
	if token == "" {
		if data, ok := obj["data"].(map[string]any); ok {
			token, _ = data["token"].(string)
		}
	}
	if token == "" {
		return nil, ErrNoToken
	}
	if err := c.tokens.Set(token); err != nil {
		return nil, err
	}

	if user, ok := obj["user"].(map[string]any); ok {
		return user, nil
	}
	if data, ok := obj["data"].(map[string]any); ok {
		if user, ok := data["user"].(map[string]any); ok {
			return user, nil
		}
	}
	return nil, nil
}

// Logout tells the server to end the session, then forgets the token
// locally regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Post(ctx, "/api/users/logout", nil)
	if clearErr := c.tokens.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

// CurrentUser fetches the raw record of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (any, error) {
	return c.Get(ctx, "/api/users/me")
}

// ChangePassword changes the password of the given user.
func (c *Client) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	_, err := c.Post(ctx, "/api/auth/change-password", map[string]string{
		"userId":      userID,
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	return err
}
