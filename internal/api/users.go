package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// CreateUserRequest is the admin-only user creation payload.
type CreateUserRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// ListUsers returns the user accounts. Admin only; other roles get a 403.
func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	path := "/api/users/"
	if limit > 0 || offset > 0 {
		q := url.Values{}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		if offset > 0 {
			q.Set("offset", strconv.Itoa(offset))
		}
		path += "?" + q.Encode()
	}
	var users []model.User
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser creates a new account. Admin only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/api/users/", req, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// GetUser fetches a single account by id.
func (c *Client) GetUser(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &user); err != nil {
		return nil, fmt.Errorf("fetch user %d: %w", id, err)
	}
	return &user, nil
}

// DeleteUser soft-deletes an account. Admin only; the server refuses
// self-deletion.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
