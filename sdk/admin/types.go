package admin

import (
	"encoding/json"
	"time"
)

// envelope is the uniform wrapper every backend response uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
	Meta    *ListMeta       `json:"meta,omitempty"`
}

// ListMeta carries pagination information on list responses.
type ListMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// TokenPair mirrors the tokens object returned by login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// AdminProfile is the authenticated administrator returned by login and
// GET /users/me.
type AdminProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a platform member as seen by the admin console.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	PostCount int       `json:"post_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is a piece of user content.
type Post struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	ReportCount int       `json:"report_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Business is a business profile on the platform.
type Business struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	Status     string    `json:"status"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Report is a user-submitted complaint about a post, user, or business.
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Category is a business category.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardStats carries the server-computed aggregate counters shown on the
// console dashboard.
type DashboardStats struct {
	TotalUsers       int `json:"total_users"`
	ActiveUsers      int `json:"active_users"`
	TotalPosts       int `json:"total_posts"`
	TotalBusinesses  int `json:"total_businesses"`
	PendingReports   int `json:"pending_reports"`
	ResolvedReports  int `json:"resolved_reports"`
	TotalCategories  int `json:"total_categories"`
	VerifiedBusiness int `json:"verified_businesses"`
}

// ListOptions are the common query parameters accepted by list endpoints.
// Zero values are omitted from the query string.
type ListOptions struct {
	Page   int
	Limit  int
	Status string
	Search string
}
