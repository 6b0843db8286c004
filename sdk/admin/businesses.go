package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListBusinesses returns one page of business profiles with pagination metadata.
func (c *Client) ListBusinesses(ctx context.Context, opts ListOptions) ([]Business, *ListMeta, error) {
	data, meta, err := c.do(ctx, http.MethodGet, "/admin/businesses", listQuery(opts), nil)
	if err != nil {
		return nil, nil, err
	}
	var businesses []Business
	if err = json.Unmarshal(data, &businesses); err != nil {
		return nil, nil, fmt.Errorf("admin: parse businesses failed: %w", err)
	}
	return businesses, meta, nil
}

// GetBusiness returns a single business by id.
func (c *Client) GetBusiness(ctx context.Context, id string) (*Business, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/businesses/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var business Business
	if err = json.Unmarshal(data, &business); err != nil {
		return nil, fmt.Errorf("admin: parse business failed: %w", err)
	}
	return &business, nil
}

// UpdateBusinessStatus sets a business's status (active, suspended).
func (c *Client) UpdateBusinessStatus(ctx context.Context, id, status string) (*Business, error) {
	data, _, err := c.do(ctx, http.MethodPatch, "/admin/businesses/"+id+"/status", nil,
		map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	var business Business
	if err = json.Unmarshal(data, &business); err != nil {
		return nil, fmt.Errorf("admin: parse business failed: %w", err)
	}
	return &business, nil
}

// SetBusinessVerified marks a business as verified or removes verification.
func (c *Client) SetBusinessVerified(ctx context.Context, id string, verified bool) (*Business, error) {
	data, _, err := c.do(ctx, http.MethodPatch, "/admin/businesses/"+id+"/verify", nil,
		map[string]bool{"verified": verified})
	if err != nil {
		return nil, err
	}
	var business Business
	if err = json.Unmarshal(data, &business); err != nil {
		return nil, fmt.Errorf("admin: parse business failed: %w", err)
	}
	return &business, nil
}
