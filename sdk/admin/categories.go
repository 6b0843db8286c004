package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListCategories returns all business categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	var categories []Category
	if err = json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("admin: parse categories failed: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a new business category.
func (c *Client) CreateCategory(ctx context.Context, name, slug string) (*Category, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/admin/categories", nil,
		map[string]string{"name": name, "slug": slug})
	if err != nil {
		return nil, err
	}
	var category Category
	if err = json.Unmarshal(data, &category); err != nil {
		return nil, fmt.Errorf("admin: parse category failed: %w", err)
	}
	return &category, nil
}

// UpdateCategory renames an existing category.
func (c *Client) UpdateCategory(ctx context.Context, id, name, slug string) (*Category, error) {
	data, _, err := c.do(ctx, http.MethodPut, "/admin/categories/"+id, nil,
		map[string]string{"name": name, "slug": slug})
	if err != nil {
		return nil, err
	}
	var category Category
	if err = json.Unmarshal(data, &category); err != nil {
		return nil, fmt.Errorf("admin: parse category failed: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/admin/categories/"+id, nil, nil)
	return err
}
