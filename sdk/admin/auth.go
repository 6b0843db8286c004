package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Login authenticates with email and password and stores the returned token
// pair. It deliberately bypasses the 401-refresh interceptor: a rejected
// credential must surface as an error, not trigger a refresh attempt.
func (c *Client) Login(ctx context.Context, email, password string) (*AdminProfile, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("admin: marshal login request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("admin: create login request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admin: login request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("admin: read login response failed: %w", err)
	}
	data, _, err := decodeEnvelope(resp.StatusCode, raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		User   AdminProfile `json:"user"`
		Tokens TokenPair    `json:"tokens"`
	}
	if err = json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("admin: parse login response failed: %w", err)
	}
	if payload.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("admin: login response missing tokens")
	}
	if err = c.store.Save(Credentials{
		AccessToken:  payload.Tokens.AccessToken,
		RefreshToken: payload.Tokens.RefreshToken,
		ExpiresAt:    payload.Tokens.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("admin: store credentials failed: %w", err)
	}
	return &payload.User, nil
}

// Logout revokes the current refresh session on the backend (best effort) and
// clears the stored pair. Logging out while already logged out is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	creds, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("admin: load credentials failed: %w", err)
	}
	if creds.RefreshToken != "" {
		// Revocation failures do not block the local logout.
		_, _, _ = c.roundTrip(ctx, http.MethodPost, "/admin/auth/logout", nil,
			mustMarshal(map[string]string{"refresh_token": creds.RefreshToken}), true)
	}
	return c.store.Clear()
}

// Me returns the authenticated administrator profile.
func (c *Client) Me(ctx context.Context) (*AdminProfile, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var profile AdminProfile
	if err = json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("admin: parse profile failed: %w", err)
	}
	return &profile, nil
}

// Dashboard returns the server-computed aggregate counters.
func (c *Client) Dashboard(ctx context.Context) (*DashboardStats, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, nil)
	if err != nil {
		return nil, err
	}
	var stats DashboardStats
	if err = json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("admin: parse dashboard failed: %w", err)
	}
	return &stats, nil
}

func mustMarshal(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
