package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/condovista/condoctl/session"
)

const loginPath = "/auth/login/"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Access  string               `json:"access"`
	Refresh string               `json:"refresh"`
	User    *session.UserProfile `json:"user"`
}

// Login authenticates against the backend and populates the session store.
// The call itself never triggers the refresh-and-retry path: a 401 here means
// bad credentials, not an expired token. The store's identity broadcast fires
// once the profile lands.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	raw, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] marshal request")
	}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, nil, contentTypeJSON, raw, &resp, false); err != nil {
		return nil, err
	}

	if resp.Access != "" {
		if err := c.store.SetAccessToken(resp.Access); err != nil {
			return nil, errors.Wrap(err, "[Client.Login] store access token")
		}
	}
	if resp.Refresh != "" {
		if err := c.store.SetRefreshToken(resp.Refresh); err != nil {
			return nil, errors.Wrap(err, "[Client.Login] store refresh token")
		}
	}
	if resp.User != nil {
		if err := c.store.SetProfile(resp.User); err != nil {
			return nil, errors.Wrap(err, "[Client.Login] store profile")
		}
	}

	return &resp, nil
}

// Logout tears the session down. Purely local: the backend holds no session
// state beyond the tokens themselves.
func (c *Client) Logout() error {
	return c.store.Clear()
}
