package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// LoginResult is the payload of a successful authentication.
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// Login authenticates against POST /api/auth/login. It deliberately
// bypasses the shared pipeline: no bearer token is attached, and a 401
// here is a plain bad-credentials failure, never a forced logout. The
// caller decides whether and when to store the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/login", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachLocale(req)
	attachAccept(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %w", apierr.ErrInvalidCredentials,
			apierr.New(resp.StatusCode, decodeDetail(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apierr.New(resp.StatusCode, decodeDetail(resp.Body))
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &result, nil
}

// Me fetches the current user profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return &user, nil
}
