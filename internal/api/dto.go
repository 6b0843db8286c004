package api

import (
	"time"

	"github.com/loopline-app/loopline-admin/internal/store"
)

// The wire shapes below are what the console and SDK decode. Store records
// are mapped explicitly so the persistence layer can evolve without leaking
// into the API contract.

type adminDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	PostCount int       `json:"post_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type postDTO struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	ReportCount int       `json:"report_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type businessDTO struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	Status     string    `json:"status"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type reportDTO struct {
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

type categoryDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type dashboardDTO struct {
	TotalUsers         int `json:"total_users"`
	ActiveUsers        int `json:"active_users"`
	TotalPosts         int `json:"total_posts"`
	TotalBusinesses    int `json:"total_businesses"`
	VerifiedBusinesses int `json:"verified_businesses"`
	PendingReports     int `json:"pending_reports"`
	ResolvedReports    int `json:"resolved_reports"`
	TotalCategories    int `json:"total_categories"`
}

func toAdminDTO(admin *store.Admin) adminDTO {
	return adminDTO{
		ID:        admin.ID,
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      admin.Role,
		CreatedAt: admin.CreatedAt,
	}
}

func toUserDTO(user store.User) userDTO {
	return userDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Status:    user.Status,
		PostCount: user.PostCount,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toUserDTOs(users []store.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toUserDTO(user))
	}
	return out
}

func toPostDTO(post store.Post) postDTO {
	return postDTO{
		ID:          post.ID,
		AuthorID:    post.AuthorID,
		AuthorName:  post.AuthorName,
		Content:     post.Content,
		Status:      post.Status,
		ReportCount: post.ReportCount,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func toPostDTOs(posts []store.Post) []postDTO {
	out := make([]postDTO, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostDTO(post))
	}
	return out
}

func toBusinessDTO(business store.Business) businessDTO {
	return businessDTO{
		ID:         business.ID,
		OwnerID:    business.OwnerID,
		Name:       business.Name,
		CategoryID: business.CategoryID,
		Status:     business.Status,
		Verified:   business.Verified,
		CreatedAt:  business.CreatedAt,
		UpdatedAt:  business.UpdatedAt,
	}
}

func toBusinessDTOs(businesses []store.Business) []businessDTO {
	out := make([]businessDTO, 0, len(businesses))
	for _, business := range businesses {
		out = append(out, toBusinessDTO(business))
	}
	return out
}

func toReportDTO(report store.Report) reportDTO {
	return reportDTO{
		ID:         report.ID,
		ReporterID: report.ReporterID,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Reason:     report.Reason,
		Status:     report.Status,
		Note:       report.Note,
		CreatedAt:  report.CreatedAt,
		UpdatedAt:  report.UpdatedAt,
	}
}

func toReportDTOs(reports []store.Report) []reportDTO {
	out := make([]reportDTO, 0, len(reports))
	for _, report := range reports {
		out = append(out, toReportDTO(report))
	}
	return out
}

func toCategoryDTO(category store.Category) categoryDTO {
	return categoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: category.CreatedAt,
	}
}

func toCategoryDTOs(categories []store.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryDTO(category))
	}
	return out
}

func toDashboardDTO(counts *store.DashboardCounts) dashboardDTO {
	return dashboardDTO{
		TotalUsers:         counts.TotalUsers,
		ActiveUsers:        counts.ActiveUsers,
		TotalPosts:         counts.TotalPosts,
		TotalBusinesses:    counts.TotalBusinesses,
		VerifiedBusinesses: counts.VerifiedBusinesses,
		PendingReports:     counts.PendingReports,
		ResolvedReports:    counts.ResolvedReports,
		TotalCategories:    counts.TotalCategories,
	}
}
