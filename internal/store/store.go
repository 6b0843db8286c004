// Package store provides persistence for the admin backend. Two
// implementations exist: a mutex-guarded in-memory store used for development
// and tests, and a PostgreSQL-backed store for deployments.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("store: conflict")

// Admin is a console administrator account.
type Admin struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// User is a platform member.
type User struct {
	ID        string
	Email     string
	Name      string
	Status    string
	PostCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is a piece of user content.
type Post struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Content     string
	Status      string
	ReportCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Business is a business profile.
type Business struct {
	ID         string
	OwnerID    string
	Name       string
	CategoryID string
	Status     string
	Verified   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Report is a moderation report filed against a user, post, or business.
type Report struct {
	ID         string
	ReporterID string
	TargetType string
	TargetID   string
	Reason     string
	Status     string
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category is a business category.
type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// RefreshSession is a server-side record of an issued refresh token. Tokens
// are one-time use: a successful refresh revokes the presented session and
// issues a new one.
type RefreshSession struct {
	Token     string
	AdminID   string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// DashboardCounts are the aggregate counters shown on the console dashboard.
type DashboardCounts struct {
	TotalUsers         int
	ActiveUsers        int
	TotalPosts         int
	TotalBusinesses    int
	VerifiedBusinesses int
	PendingReports     int
	ResolvedReports    int
	TotalCategories    int
}

// Filter narrows and paginates list queries. Page and Limit are 1-based and
// normalized by the implementations.
type Filter struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// Normalize clamps the filter to sane pagination bounds.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

// Offset returns the row offset implied by the normalized filter.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Store is the persistence contract the admin backend depends on.
type Store interface {
	// Administrators.
	CountAdmins(ctx context.Context) (int, error)
	CreateAdmin(ctx context.Context, admin *Admin) error
	AdminByEmail(ctx context.Context, email string) (*Admin, error)
	AdminByID(ctx context.Context, id string) (*Admin, error)

	// Refresh sessions.
	CreateSession(ctx context.Context, session *RefreshSession) error
	SessionByToken(ctx context.Context, token string) (*RefreshSession, error)
	RevokeSession(ctx context.Context, token string) error

	// Users.
	ListUsers(ctx context.Context, filter Filter) ([]User, int, error)
	UserByID(ctx context.Context, id string) (*User, error)
	UpdateUserStatus(ctx context.Context, id, status string) (*User, error)
	DeleteUser(ctx context.Context, id string) error

	// Posts.
	ListPosts(ctx context.Context, filter Filter) ([]Post, int, error)
	PostByID(ctx context.Context, id string) (*Post, error)
	UpdatePostStatus(ctx context.Context, id, status string) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	// Businesses.
	ListBusinesses(ctx context.Context, filter Filter) ([]Business, int, error)
	BusinessByID(ctx context.Context, id string) (*Business, error)
	UpdateBusinessStatus(ctx context.Context, id, status string) (*Business, error)
	SetBusinessVerified(ctx context.Context, id string, verified bool) (*Business, error)

	// Reports.
	ListReports(ctx context.Context, filter Filter) ([]Report, int, error)
	ReportByID(ctx context.Context, id string) (*Report, error)
	UpdateReportStatus(ctx context.Context, id, status, note string) (*Report, error)

	// Categories.
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Dashboard.
	DashboardCounts(ctx context.Context) (*DashboardCounts, error)

	Close() error
}
