package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListUsers returns one page of platform users with pagination metadata.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) ([]User, *ListMeta, error) {
	data, meta, err := c.do(ctx, http.MethodGet, "/admin/users", listQuery(opts), nil)
	if err != nil {
		return nil, nil, err
	}
	var users []User
	if err = json.Unmarshal(data, &users); err != nil {
		return nil, nil, fmt.Errorf("admin: parse users failed: %w", err)
	}
	return users, meta, nil
}

// GetUser returns a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/users/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err = json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("admin: parse user failed: %w", err)
	}
	return &user, nil
}

// UpdateUserStatus sets a user's moderation status (active, suspended, banned).
func (c *Client) UpdateUserStatus(ctx context.Context, id, status string) (*User, error) {
	data, _, err := c.do(ctx, http.MethodPatch, "/admin/users/"+id+"/status", nil,
		map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	var user User
	if err = json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("admin: parse user failed: %w", err)
	}
	return &user, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/admin/users/"+id, nil, nil)
	return err
}
