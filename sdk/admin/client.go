package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/loopline-app/loopline-admin/internal/util"
)

const defaultRequestTimeout = 30 * time.Second

// Client routes every outbound call through a uniform authentication
// contract: it attaches the stored access token, detects a 401, performs a
// one-shot silent refresh, retries the original request exactly once, and
// resets the session when the refresh itself fails.
//
// Concurrent 401s coalesce into a single in-flight refresh; every waiter
// observes the same outcome.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	store            CredentialStore
	onSessionExpired func()
	refreshGroup     singleflight.Group
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend base URL, without a trailing slash.
	BaseURL string
	// Store persists the credential pair. Defaults to an in-memory store.
	Store CredentialStore
	// Timeout bounds every request, the refresh call included. Defaults to
	// 30 seconds. A timeout surfaces as a transport error, never as a 401.
	Timeout time.Duration
	// ProxyURL optionally routes outbound requests through a socks5, http,
	// or https proxy.
	ProxyURL string
	// OnSessionExpired is invoked after a failed refresh has cleared the
	// stored tokens. The shell decides what navigation means; the pipeline
	// never does it.
	OnSessionExpired func()
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	store := opts.Store
	if store == nil {
		store = NewMemoryCredentialStore()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.ProxyURL != "" {
		httpClient = util.SetProxy(opts.ProxyURL, httpClient)
	}
	return &Client{
		baseURL:          opts.BaseURL,
		httpClient:       httpClient,
		store:            store,
		onSessionExpired: opts.OnSessionExpired,
	}
}

// Store returns the credential store the client reads and writes.
func (c *Client) Store() CredentialStore {
	return c.store
}

// do sends an authenticated request and decodes the response envelope. On a
// 401 it refreshes the session once and redispatches the original request;
// the retried outcome is final even if it is another 401.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, *ListMeta, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, nil, fmt.Errorf("admin: marshal request failed: %w", err)
		}
	}

	status, raw, err := c.roundTrip(ctx, method, path, query, body, true)
	if err != nil {
		return nil, nil, err
	}

	if status == http.StatusUnauthorized {
		if err = c.refreshSession(ctx); err != nil {
			return nil, nil, err
		}
		// Exactly one redispatch with the fresh token. Its outcome is
		// returned to the caller unchanged, another 401 included.
		if status, raw, err = c.roundTrip(ctx, method, path, query, body, true); err != nil {
			return nil, nil, err
		}
	}

	return decodeEnvelope(status, raw)
}

// roundTrip performs a single dispatch. When attach is true and a non-empty
// access token is stored, the Authorization header carries it; otherwise the
// request goes out bare and the backend decides whether it is permitted.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body []byte, attach bool) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("admin: create request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if attach {
		creds, errLoad := c.store.Load()
		if errLoad != nil {
			return 0, nil, fmt.Errorf("admin: load credentials failed: %w", errLoad)
		}
		if creds.Valid() {
			req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("admin: request %s %s failed: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("admin: read response failed: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// refreshSession exchanges the stored refresh token for a new pair. Failures
// are terminal: both slots are cleared, the session-expired callback fires,
// and the caller receives ErrSessionExpired wrapping the cause.
func (c *Client) refreshSession(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	if err != nil {
		c.resetSession()
		return fmt.Errorf("%w: %s", ErrSessionExpired, err)
	}
	return nil
}

// refresh calls the backend refresh endpoint on the bare transport; it never
// recurses through the authenticated pipeline. The refresh itself is not
// retried.
func (c *Client) refresh(ctx context.Context) error {
	creds, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load credentials failed: %w", err)
	}
	if creds.RefreshToken == "" {
		return fmt.Errorf("no refresh token stored")
	}

	body, err := json.Marshal(map[string]string{"refresh_token": creds.RefreshToken})
	if err != nil {
		return fmt.Errorf("marshal refresh request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create refresh request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read refresh response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh failed with status %d: %s", resp.StatusCode, extractErrorMessage(raw))
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse refresh response failed: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("refresh rejected: %s", extractErrorMessage(raw))
	}

	var data struct {
		Tokens TokenPair `json:"tokens"`
	}
	if err = json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("parse refresh tokens failed: %w", err)
	}
	if data.Tokens.AccessToken == "" || data.Tokens.RefreshToken == "" {
		return fmt.Errorf("refresh response missing tokens")
	}

	return c.store.Save(Credentials{
		AccessToken:  data.Tokens.AccessToken,
		RefreshToken: data.Tokens.RefreshToken,
		ExpiresAt:    data.Tokens.ExpiresAt,
	})
}

func (c *Client) resetSession() {
	_ = c.store.Clear()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// decodeEnvelope turns a raw response into envelope data. Any non-2xx status
// or a success=false body becomes an *APIError carrying the backend message.
func decodeEnvelope(status int, raw []byte) (json.RawMessage, *ListMeta, error) {
	if status < 200 || status > 299 {
		return nil, nil, newAPIError(status, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("admin: parse response failed: %w", err)
	}
	if !env.Success {
		return nil, nil, newAPIError(status, raw)
	}
	return env.Data, env.Meta, nil
}

// listQuery converts ListOptions into query parameters, omitting zero values.
func listQuery(opts ListOptions) url.Values {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	return query
}
