package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loopline-app/loopline-admin/internal/auth"
	"github.com/loopline-app/loopline-admin/internal/config"
	"github.com/loopline-app/loopline-admin/internal/store"
)

const (
	testAdminEmail    = "root@example.com"
	testAdminPassword = "correct horse"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err = st.CreateAdmin(context.Background(), &store.Admin{
		ID:           "admin-1",
		Email:        testAdminEmail,
		Name:         "Root",
		Role:         "admin",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	cfg := &config.Config{}
	tokens := auth.NewTokenService("test-secret", 15*time.Minute, time.Hour, st)
	return NewServer(cfg, st, tokens), st
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    *listMeta       `json:"meta"`
}

func doRequest(t *testing.T, s *Server, method, path, token string, payload any) (int, envelope) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

func loginPair(t *testing.T, s *Server) auth.TokenPair {
	t.Helper()

	status, env := doRequest(t, s, http.MethodPost, "/admin/auth/login", "",
		map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("login = %d %+v, want 200 success", status, env)
	}
	var data struct {
		Tokens auth.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal login data: %v", err)
	}
	if data.Tokens.AccessToken == "" || data.Tokens.RefreshToken == "" {
		t.Fatalf("login tokens = %+v, want both set", data.Tokens)
	}
	return data.Tokens
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		payload    any
		wantStatus int
	}{
		{name: "wrong password", payload: map[string]string{"email": testAdminEmail, "password": "nope"}, wantStatus: 401},
		{name: "unknown email", payload: map[string]string{"email": "ghost@example.com", "password": "nope"}, wantStatus: 401},
		{name: "missing fields", payload: map[string]string{"email": testAdminEmail}, wantStatus: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, s, http.MethodPost, "/admin/auth/login", "", tt.payload)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if env.Success {
				t.Error("envelope success = true, want false")
			}
			if env.Error == "" {
				t.Error("envelope error is empty, want a message")
			}
		})
	}
}

func TestAuthenticatedProfileFlow(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	pair := loginPair(t, s)

	status, env := doRequest(t, s, http.MethodGet, "/users/me", pair.AccessToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("me = %d %+v, want 200 success", status, env)
	}
	var profile struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if profile.Email != testAdminEmail || profile.Role != "admin" {
		t.Errorf("profile = %+v, want seeded admin", profile)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, s, http.MethodGet, "/admin/users", tt.token, nil)
			if status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", status)
			}
			if env.Success {
				t.Error("envelope success = true, want false")
			}
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	pair := loginPair(t, s)

	status, env := doRequest(t, s, http.MethodPost, "/auth/refresh", "",
		map[string]string{"refresh_token": pair.RefreshToken})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("refresh = %d %+v, want 200 success", status, env)
	}
	var data struct {
		Tokens auth.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal refresh data: %v", err)
	}
	if data.Tokens.RefreshToken == pair.RefreshToken {
		t.Error("refresh returned the presented token, want a rotated one")
	}

	// The presented token is spent.
	status, env = doRequest(t, s, http.MethodPost, "/auth/refresh", "",
		map[string]string{"refresh_token": pair.RefreshToken})
	if status != http.StatusUnauthorized || env.Success {
		t.Errorf("replayed refresh = %d %+v, want 401 failure", status, env)
	}

	// The rotated access token is usable.
	status, _ = doRequest(t, s, http.MethodGet, "/users/me", data.Tokens.AccessToken, nil)
	if status != http.StatusOK {
		t.Errorf("me with rotated token = %d, want 200", status)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	pair := loginPair(t, s)

	status, env := doRequest(t, s, http.MethodPost, "/admin/auth/logout", pair.AccessToken,
		map[string]string{"refresh_token": pair.RefreshToken})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("logout = %d %+v, want 200 success", status, env)
	}

	status, _ = doRequest(t, s, http.MethodPost, "/auth/refresh", "",
		map[string]string{"refresh_token": pair.RefreshToken})
	if status != http.StatusUnauthorized {
		t.Errorf("refresh after logout = %d, want 401", status)
	}
}

func TestListUsersPagination(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		st.InsertUser(&store.User{
			ID:        fmt.Sprintf("user-%02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Name:      fmt.Sprintf("User %02d", i),
			Status:    "active",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	status, env := doRequest(t, s, http.MethodGet, "/admin/users?page=2&limit=10", pair.AccessToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("list = %d %+v, want 200 success", status, env)
	}
	if env.Meta == nil {
		t.Fatal("list response carries no meta block")
	}
	if env.Meta.Page != 2 || env.Meta.Limit != 10 || env.Meta.TotalCount != 25 || env.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v, want page 2 limit 10 total 25 pages 3", env.Meta)
	}
	var users []json.RawMessage
	if err := json.Unmarshal(env.Data, &users); err != nil {
		t.Fatalf("unmarshal users: %v", err)
	}
	if len(users) != 10 {
		t.Errorf("page size = %d, want 10", len(users))
	}
}

func TestUpdateUserStatus(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)
	st.InsertUser(&store.User{ID: "user-1", Email: "ann@example.com", Name: "Ann", Status: "active"})

	tests := []struct {
		name       string
		id         string
		payload    any
		wantStatus int
	}{
		{name: "valid transition", id: "user-1", payload: map[string]string{"status": "suspended"}, wantStatus: 200},
		{name: "invalid status", id: "user-1", payload: map[string]string{"status": "frozen"}, wantStatus: 400},
		{name: "missing status", id: "user-1", payload: map[string]string{}, wantStatus: 400},
		{name: "unknown user", id: "ghost", payload: map[string]string{"status": "banned"}, wantStatus: 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, s, http.MethodPatch, "/admin/users/"+tt.id+"/status", pair.AccessToken, tt.payload)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if (status == 200) != env.Success {
				t.Errorf("envelope success = %v on status %d", env.Success, status)
			}
		})
	}

	user, err := st.UserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserByID() error = %v", err)
	}
	if user.Status != "suspended" {
		t.Errorf("user status = %q, want %q", user.Status, "suspended")
	}
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)
	st.InsertUser(&store.User{ID: "user-1", Email: "ann@example.com", Name: "Ann", Status: "active"})

	status, env := doRequest(t, s, http.MethodDelete, "/admin/users/user-1", pair.AccessToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("delete = %d %+v, want 200 success", status, env)
	}
	status, _ = doRequest(t, s, http.MethodDelete, "/admin/users/user-1", pair.AccessToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", status)
	}
}

func TestVerifyBusiness(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)
	st.InsertBusiness(&store.Business{ID: "biz-1", Name: "Cafe Nine", Status: "active"})

	status, env := doRequest(t, s, http.MethodPatch, "/admin/businesses/biz-1/verify", pair.AccessToken,
		map[string]bool{"verified": true})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("verify = %d %+v, want 200 success", status, env)
	}
	var business struct {
		Verified bool `json:"verified"`
	}
	if err := json.Unmarshal(env.Data, &business); err != nil {
		t.Fatalf("unmarshal business: %v", err)
	}
	if !business.Verified {
		t.Error("business verified = false, want true")
	}
}

func TestReportStatusFilter(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)
	st.InsertReport(&store.Report{ID: "rep-1", TargetType: "post", TargetID: "post-1", Reason: "spam", Status: "pending"})
	st.InsertReport(&store.Report{ID: "rep-2", TargetType: "user", TargetID: "user-1", Reason: "abuse", Status: "resolved"})

	status, env := doRequest(t, s, http.MethodGet, "/admin/reports?status=pending", pair.AccessToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("list = %d %+v, want 200 success", status, env)
	}
	var reports []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &reports); err != nil {
		t.Fatalf("unmarshal reports: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != "rep-1" {
		t.Errorf("filtered reports = %+v, want only rep-1", reports)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	pair := loginPair(t, s)

	status, env := doRequest(t, s, http.MethodPost, "/admin/categories", pair.AccessToken,
		map[string]string{"name": "Food & Drink"})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("create = %d %+v, want 200 success", status, env)
	}
	var category struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(env.Data, &category); err != nil {
		t.Fatalf("unmarshal category: %v", err)
	}
	if category.Slug == "" {
		t.Error("category slug is empty, want derived slug")
	}

	status, _ = doRequest(t, s, http.MethodPut, "/admin/categories/"+category.ID, pair.AccessToken,
		map[string]string{"name": "Food"})
	if status != http.StatusOK {
		t.Errorf("update = %d, want 200", status)
	}
	status, _ = doRequest(t, s, http.MethodDelete, "/admin/categories/"+category.ID, pair.AccessToken, nil)
	if status != http.StatusOK {
		t.Errorf("delete = %d, want 200", status)
	}
	status, _ = doRequest(t, s, http.MethodDelete, "/admin/categories/"+category.ID, pair.AccessToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", status)
	}
}

func TestDashboardCounts(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	pair := loginPair(t, s)

	st.InsertUser(&store.User{ID: "user-1", Status: "active"})
	st.InsertUser(&store.User{ID: "user-2", Status: "banned"})
	st.InsertPost(&store.Post{ID: "post-1", Status: "published"})
	st.InsertBusiness(&store.Business{ID: "biz-1", Status: "active", Verified: true})
	st.InsertReport(&store.Report{ID: "rep-1", Status: "pending"})

	status, env := doRequest(t, s, http.MethodGet, "/admin/dashboard", pair.AccessToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("dashboard = %d %+v, want 200 success", status, env)
	}
	var stats struct {
		TotalUsers         int `json:"total_users"`
		ActiveUsers        int `json:"active_users"`
		TotalPosts         int `json:"total_posts"`
		VerifiedBusinesses int `json:"verified_businesses"`
		PendingReports     int `json:"pending_reports"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.TotalUsers != 2 || stats.ActiveUsers != 1 {
		t.Errorf("user counts = %+v, want total 2 active 1", stats)
	}
	if stats.TotalPosts != 1 || stats.VerifiedBusinesses != 1 || stats.PendingReports != 1 {
		t.Errorf("counts = %+v, want one post, verified business, pending report", stats)
	}
}

func TestMetaFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		filter    store.Filter
		total     int
		wantPages int
	}{
		{name: "exact pages", filter: store.Filter{Page: 1, Limit: 10}, total: 30, wantPages: 3},
		{name: "partial last page", filter: store.Filter{Page: 1, Limit: 10}, total: 31, wantPages: 4},
		{name: "empty set", filter: store.Filter{Page: 1, Limit: 10}, total: 0, wantPages: 0},
		{name: "defaults applied", filter: store.Filter{}, total: 5, wantPages: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			meta := metaFor(tt.filter, tt.total)
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantPages)
			}
			if meta.TotalCount != tt.total {
				t.Errorf("TotalCount = %d, want %d", meta.TotalCount, tt.total)
			}
		})
	}
}
