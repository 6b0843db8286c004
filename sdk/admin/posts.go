package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListPosts returns one page of posts with pagination metadata.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]Post, *ListMeta, error) {
	data, meta, err := c.do(ctx, http.MethodGet, "/admin/posts", listQuery(opts), nil)
	if err != nil {
		return nil, nil, err
	}
	var posts []Post
	if err = json.Unmarshal(data, &posts); err != nil {
		return nil, nil, fmt.Errorf("admin: parse posts failed: %w", err)
	}
	return posts, meta, nil
}

// GetPost returns a single post by id.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/posts/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var post Post
	if err = json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("admin: parse post failed: %w", err)
	}
	return &post, nil
}

// UpdatePostStatus sets a post's moderation status (published, hidden, removed).
func (c *Client) UpdatePostStatus(ctx context.Context, id, status string) (*Post, error) {
	data, _, err := c.do(ctx, http.MethodPatch, "/admin/posts/"+id+"/status", nil,
		map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	var post Post
	if err = json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("admin: parse post failed: %w", err)
	}
	return &post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/admin/posts/"+id, nil, nil)
	return err
}
