package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": "invalid or expired token",
		"error":   "invalid or expired token",
	})
}

func profileEnvelope() map[string]any {
	return map[string]any{
		"success": true,
		"message": "ok",
		"data":    map[string]any{"id": "a1", "email": "root@example.com", "name": "Root", "role": "admin"},
	}
}

func tokensEnvelope(access, refresh string) map[string]any {
	return map[string]any{
		"success": true,
		"message": "token refreshed",
		"data": map[string]any{
			"tokens": map[string]any{"access_token": access, "refresh_token": refresh},
		},
	}
}

func TestBearerAttachment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stored     Credentials
		wantHeader string
	}{
		{
			name:       "token attached when stored",
			stored:     Credentials{AccessToken: "tok-1", RefreshToken: "ref-1"},
			wantHeader: "Bearer tok-1",
		},
		{
			name:       "no header when logged out",
			stored:     Credentials{},
			wantHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotHeader string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")
				writeEnvelope(w, http.StatusOK, profileEnvelope())
			}))
			defer server.Close()

			store := NewMemoryCredentialStore()
			if err := store.Save(tt.stored); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			client := NewClient(Options{BaseURL: server.URL, Store: store})

			if _, err := client.Me(context.Background()); err != nil {
				t.Fatalf("Me() error = %v", err)
			}
			if gotHeader != tt.wantHeader {
				t.Errorf("Authorization = %q, want %q", gotHeader, tt.wantHeader)
			}
		})
	}
}

func TestUnauthorizedTriggersRefreshAndRetry(t *testing.T) {
	t.Parallel()

	var resourceHits, refreshHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceHits, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeUnauthorized(w)
			return
		}
		writeEnvelope(w, http.StatusOK, profileEnvelope())
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken != "ref-1" {
			writeUnauthorized(w)
			return
		}
		writeEnvelope(w, http.StatusOK, tokensEnvelope("fresh", "ref-2"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewMemoryCredentialStore()
	if err := store.Save(Credentials{AccessToken: "stale", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	client := NewClient(Options{BaseURL: server.URL, Store: store})

	profile, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if profile.Email != "root@example.com" {
		t.Errorf("profile email = %q, want %q", profile.Email, "root@example.com")
	}
	if got := atomic.LoadInt32(&resourceHits); got != 2 {
		t.Errorf("resource hits = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&refreshHits); got != 1 {
		t.Errorf("refresh hits = %d, want 1", got)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if creds.AccessToken != "fresh" || creds.RefreshToken != "ref-2" {
		t.Errorf("stored pair = %+v, want rotated tokens", creds)
	}
}

func TestRetriedUnauthorizedIsFinal(t *testing.T) {
	t.Parallel()

	var resourceHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceHits, 1)
		writeUnauthorized(w)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, tokensEnvelope("fresh", "ref-2"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewMemoryCredentialStore()
	if err := store.Save(Credentials{AccessToken: "stale", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	client := NewClient(Options{BaseURL: server.URL, Store: store})

	_, err := client.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Me() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	// The second 401 must not start another refresh cycle.
	if got := atomic.LoadInt32(&resourceHits); got != 2 {
		t.Errorf("resource hits = %d, want 2", got)
	}
}

func TestFailedRefreshResetsSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeUnauthorized(w)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeUnauthorized(w)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewMemoryCredentialStore()
	if err := store.Save(Credentials{AccessToken: "stale", RefreshToken: "dead"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	var callbackFired bool
	client := NewClient(Options{
		BaseURL:          server.URL,
		Store:            store,
		OnSessionExpired: func() { callbackFired = true },
	})

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Me() error = %v, want ErrSessionExpired", err)
	}
	if !callbackFired {
		t.Error("session-expired callback did not fire")
	}
	creds, errLoad := store.Load()
	if errLoad != nil {
		t.Fatalf("Load() error = %v", errLoad)
	}
	if creds.AccessToken != "" || creds.RefreshToken != "" {
		t.Errorf("stored pair = %+v, want cleared", creds)
	}
}

func TestConcurrentUnauthorizedCoalescesRefresh(t *testing.T) {
	t.Parallel()

	const workers = 4

	var refreshHits int32
	var barrier sync.WaitGroup
	barrier.Add(workers)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer fresh" {
			writeEnvelope(w, http.StatusOK, profileEnvelope())
			return
		}
		// Release all first attempts together so the refreshes overlap.
		barrier.Done()
		barrier.Wait()
		writeUnauthorized(w)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		time.Sleep(100 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, tokensEnvelope("fresh", "ref-2"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewMemoryCredentialStore()
	if err := store.Save(Credentials{AccessToken: "stale", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	client := NewClient(Options{BaseURL: server.URL, Store: store})

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Me(context.Background())
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Errorf("Me() error = %v", err)
		}
	}
	if got := atomic.LoadInt32(&refreshHits); got != 1 {
		t.Errorf("refresh hits = %d, want 1", got)
	}
}

func TestFailedLoginDoesNotRefresh(t *testing.T) {
	t.Parallel()

	var refreshHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "invalid email or password",
			"error":   "invalid email or password",
		})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		writeUnauthorized(w)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})

	_, err := client.Login(context.Background(), "root@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *APIError", err)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("message = %q, want backend message", apiErr.Message)
	}
	if got := atomic.LoadInt32(&refreshHits); got != 0 {
		t.Errorf("refresh hits = %d, want 0", got)
	}
}

func TestLoginStoresPair(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "login successful",
			"data": map[string]any{
				"user":   map[string]any{"id": "a1", "email": "root@example.com", "role": "admin"},
				"tokens": map[string]any{"access_token": "tok-1", "refresh_token": "ref-1"},
			},
		})
	}))
	defer server.Close()

	store := NewMemoryCredentialStore()
	client := NewClient(Options{BaseURL: server.URL, Store: store})

	profile, err := client.Login(context.Background(), "root@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.ID != "a1" {
		t.Errorf("profile id = %q, want %q", profile.ID, "a1")
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if creds.AccessToken != "tok-1" || creds.RefreshToken != "ref-1" {
		t.Errorf("stored pair = %+v, want login tokens", creds)
	}
}

func TestLogoutClearsStore(t *testing.T) {
	t.Parallel()

	var revoked bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/auth/logout" {
			revoked = true
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
	}))
	defer server.Close()

	store := NewMemoryCredentialStore()
	if err := store.Save(Credentials{AccessToken: "tok-1", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	client := NewClient(Options{BaseURL: server.URL, Store: store})

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !revoked {
		t.Error("logout endpoint was not called")
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if creds.Valid() {
		t.Errorf("stored pair = %+v, want cleared", creds)
	}
}

func TestExtractErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field preferred", body: `{"success":false,"message":"outer","error":"inner"}`, want: "inner"},
		{name: "message fallback", body: `{"success":false,"message":"outer"}`, want: "outer"},
		{name: "empty body", body: `{}`, want: genericErrorMessage},
		{name: "invalid json", body: `<html>bad gateway</html>`, want: genericErrorMessage},
		{name: "non-string error ignored", body: `{"error":{"code":500},"message":"outer"}`, want: "outer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractErrorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("extractErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{name: "success", status: 200, body: `{"success":true,"message":"ok","data":{"id":"1"}}`},
		{name: "success false on 200", status: 200, body: `{"success":false,"message":"ok","error":"denied"}`, wantErr: true, wantStatus: 200},
		{name: "server error", status: 500, body: `{"success":false,"error":"boom"}`, wantErr: true, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, _, err := decodeEnvelope(tt.status, []byte(tt.body))
			if tt.wantErr {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("decodeEnvelope() error = %v, want *APIError", err)
				}
				if apiErr.StatusCode != tt.wantStatus {
					t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeEnvelope() error = %v", err)
			}
			if len(data) == 0 {
				t.Error("decodeEnvelope() returned empty data")
			}
		})
	}
}

func TestTransportErrorPassesThrough(t *testing.T) {
	t.Parallel()

	client := NewClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("Me() error = nil, want transport error")
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Errorf("transport error must not be classified as session expiry: %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport error must not be classified as *APIError: %v", err)
	}
}

func TestListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts ListOptions
		want string
	}{
		{name: "zero values omitted", opts: ListOptions{}, want: ""},
		{name: "full set", opts: ListOptions{Page: 2, Limit: 10, Status: "active", Search: "ann"}, want: "limit=10&page=2&search=ann&status=active"},
		{name: "status only", opts: ListOptions{Status: "pending"}, want: "status=pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := listQuery(tt.opts).Encode(); got != tt.want {
				t.Errorf("listQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ExampleClient_Me() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, profileEnvelope())
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	profile, err := client.Me(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(profile.Email)
	// Output: root@example.com
}
