package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func seedUsers(s *MemoryStore, n int) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		status := "active"
		if i%5 == 0 {
			status = "suspended"
		}
		s.InsertUser(&User{
			ID:        fmt.Sprintf("user-%02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Name:      fmt.Sprintf("User %02d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestListUsersPaginationAndOrder(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	seedUsers(s, 25)

	users, total, err := s.ListUsers(context.Background(), Filter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(users) != 10 {
		t.Fatalf("page size = %d, want 10", len(users))
	}
	// Newest first.
	if users[0].ID != "user-24" {
		t.Errorf("first user = %q, want user-24", users[0].ID)
	}

	// The last page is partial; total is unaffected by the page requested.
	users, total, err = s.ListUsers(context.Background(), Filter{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 25 || len(users) != 5 {
		t.Errorf("page 3 = %d items, total %d; want 5 items, total 25", len(users), total)
	}

	// A page past the end is empty, not an error.
	users, _, err = s.ListUsers(context.Background(), Filter{Page: 9, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("page past end = %d items, want 0", len(users))
	}
}

func TestListUsersFilters(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	seedUsers(s, 10)

	_, total, err := s.ListUsers(context.Background(), Filter{Status: "suspended", Limit: 100})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 2 {
		t.Errorf("suspended total = %d, want 2", total)
	}

	users, total, err := s.ListUsers(context.Background(), Filter{Search: "user07", Limit: 100})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 1 || users[0].ID != "user-07" {
		t.Errorf("search result = %+v (total %d), want only user-07", users, total)
	}

	// Search is case-insensitive.
	_, total, err = s.ListUsers(context.Background(), Filter{Search: "USER 03", Limit: 100})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if total != 1 {
		t.Errorf("case-insensitive search total = %d, want 1", total)
	}
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.InsertUser(&User{ID: "user-1", Email: "ann@example.com", Name: "Ann", Status: "active"})

	user, err := s.UpdateUserStatus(context.Background(), "user-1", "banned")
	if err != nil {
		t.Fatalf("UpdateUserStatus() error = %v", err)
	}
	if user.Status != "banned" {
		t.Errorf("status = %q, want banned", user.Status)
	}
	if user.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero after a status change")
	}

	if _, err = s.UpdateUserStatus(context.Background(), "ghost", "banned"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUserStatus(ghost) error = %v, want ErrNotFound", err)
	}

	if err = s.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err = s.UserByID(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID() after delete error = %v, want ErrNotFound", err)
	}
	if err = s.DeleteUser(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}

func TestAdminUniqueEmail(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	admin := &Admin{ID: "admin-1", Email: "root@example.com"}
	if err := s.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	dup := &Admin{ID: "admin-2", Email: "root@example.com"}
	if err := s.CreateAdmin(context.Background(), dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateAdmin() error = %v, want ErrConflict", err)
	}
}

func TestSessionRevocation(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	session := &RefreshSession{
		Token:     "tok-1",
		AdminID:   "admin-1",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := s.SessionByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("SessionByToken() error = %v", err)
	}
	if got.Revoked {
		t.Error("new session is revoked")
	}

	if err = s.RevokeSession(context.Background(), "tok-1"); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}
	got, err = s.SessionByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("SessionByToken() after revoke error = %v", err)
	}
	if !got.Revoked {
		t.Error("session not marked revoked")
	}

	if _, err = s.SessionByToken(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionByToken(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestCategoryConflictOnSlug(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := s.CreateCategory(context.Background(), &Category{ID: "cat-1", Name: "Food", Slug: "food"}); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	err := s.CreateCategory(context.Background(), &Category{ID: "cat-2", Name: "Food Two", Slug: "food"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("CreateCategory() with duplicate slug error = %v, want ErrConflict", err)
	}
}

func TestDashboardCountsAggregation(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.InsertUser(&User{ID: "u1", Status: "active"})
	s.InsertUser(&User{ID: "u2", Status: "active"})
	s.InsertUser(&User{ID: "u3", Status: "banned"})
	s.InsertPost(&Post{ID: "p1", Status: "published"})
	s.InsertPost(&Post{ID: "p2", Status: "removed"})
	s.InsertBusiness(&Business{ID: "b1", Status: "active", Verified: true})
	s.InsertBusiness(&Business{ID: "b2", Status: "suspended"})
	s.InsertReport(&Report{ID: "r1", Status: "pending"})
	s.InsertReport(&Report{ID: "r2", Status: "resolved"})
	s.InsertReport(&Report{ID: "r3", Status: "pending"})

	counts, err := s.DashboardCounts(context.Background())
	if err != nil {
		t.Fatalf("DashboardCounts() error = %v", err)
	}
	if counts.TotalUsers != 3 || counts.ActiveUsers != 2 {
		t.Errorf("users = %d/%d, want 3 total 2 active", counts.TotalUsers, counts.ActiveUsers)
	}
	if counts.TotalPosts != 2 {
		t.Errorf("posts = %d, want 2", counts.TotalPosts)
	}
	if counts.TotalBusinesses != 2 || counts.VerifiedBusinesses != 1 {
		t.Errorf("businesses = %d/%d, want 2 total 1 verified", counts.TotalBusinesses, counts.VerifiedBusinesses)
	}
	if counts.PendingReports != 2 || counts.ResolvedReports != 1 {
		t.Errorf("reports = %d/%d, want 2 pending 1 resolved", counts.PendingReports, counts.ResolvedReports)
	}
}

func TestFilterNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Filter
		wantPage  int
		wantLimit int
	}{
		{name: "zero value", in: Filter{}, wantPage: 1, wantLimit: 20},
		{name: "negative page", in: Filter{Page: -3, Limit: 10}, wantPage: 1, wantLimit: 10},
		{name: "limit capped", in: Filter{Page: 2, Limit: 500}, wantPage: 2, wantLimit: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = %+v, want page %d limit %d", got, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
