package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// Authenticate exchanges credentials for a session token
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/authenticate", nil, authRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}

	token := firstNonEmpty(resp.Token, resp.AccessToken)
	if token == "" {
		return "", fmt.Errorf("authentication response did not contain a token")
	}
	return token, nil
}

// Me fetches the signed-in user and their memberships
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var dto userDTO
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &dto); err != nil {
		return nil, err
	}
	return normalizeUser(dto), nil
}
