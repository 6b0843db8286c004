package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists the admin domain in PostgreSQL through the pgx
// stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore establishes a connection to PostgreSQL and verifies it
// with a ping.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("postgres store: DSN is required")
	}
	db, err := sql.Open("pgx", trimmed)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open database connection: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres store: ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the required tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'admin',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_sessions (
			token TEXT PRIMARY KEY,
			admin_id TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			post_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'published',
			report_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			reporter_id TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres store: ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres store: count admins: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CreateAdmin(ctx context.Context, admin *Admin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, name, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.ID, admin.Email, admin.Name, admin.Role, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("postgres store: create admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM admins WHERE LOWER(email) = LOWER($1)`, email)
	return scanAdmin(row)
}

func (s *PostgresStore) AdminByID(ctx context.Context, id string) (*Admin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at FROM admins WHERE id = $1`, id)
	return scanAdmin(row)
}

func scanAdmin(row *sql.Row) (*Admin, error) {
	var admin Admin
	err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.Role, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: scan admin: %w", err)
	}
	return &admin, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, session *RefreshSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_sessions (token, admin_id, expires_at, revoked, created_at) VALUES ($1, $2, $3, $4, $5)`,
		session.Token, session.AdminID, session.ExpiresAt, session.Revoked, session.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("postgres store: create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) SessionByToken(ctx context.Context, token string) (*RefreshSession, error) {
	var session RefreshSession
	err := s.db.QueryRowContext(ctx,
		`SELECT token, admin_id, expires_at, revoked, created_at FROM refresh_sessions WHERE token = $1`, token).
		Scan(&session.Token, &session.AdminID, &session.ExpiresAt, &session.Revoked, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: session by token: %w", err)
	}
	return &session, nil
}

func (s *PostgresStore) RevokeSession(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("postgres store: revoke session: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) ListUsers(ctx context.Context, filter Filter) ([]User, int, error) {
	filter = filter.Normalize()
	where, args := buildFilter(filter, "name", "email")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres store: count users: %w", err)
	}

	query := `SELECT id, email, name, status, post_count, created_at, updated_at FROM users` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres store: list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]User, 0, filter.Limit)
	for rows.Next() {
		var user User
		if err = rows.Scan(&user.ID, &user.Email, &user.Name, &user.Status, &user.PostCount, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres store: scan user: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres store: iterate users: %w", err)
	}
	return users, total, nil
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, status, post_count, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.Status, &user.PostCount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: user by id: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) UpdateUserStatus(ctx context.Context, id, status string) (*User, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("postgres store: update user status: %w", err)
	}
	if err = requireAffected(result); err != nil {
		return nil, err
	}
	return s.UserByID(ctx, id)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete user: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) ListPosts(ctx context.Context, filter Filter) ([]Post, int, error) {
	filter = filter.Normalize()
	where, args := buildFilter(filter, "content", "author_name")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres store: count posts: %w", err)
	}

	query := `SELECT id, author_id, author_name, content, status, report_count, created_at, updated_at FROM posts` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres store: list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]Post, 0, filter.Limit)
	for rows.Next() {
		var post Post
		if err = rows.Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.Content, &post.Status, &post.ReportCount, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres store: scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres store: iterate posts: %w", err)
	}
	return posts, total, nil
}

func (s *PostgresStore) PostByID(ctx context.Context, id string) (*Post, error) {
	var post Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, author_id, author_name, content, status, report_count, created_at, updated_at FROM posts WHERE id = $1`, id).
		Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.Content, &post.Status, &post.ReportCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: post by id: %w", err)
	}
	return &post, nil
}

func (s *PostgresStore) UpdatePostStatus(ctx context.Context, id, status string) (*Post, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("postgres store: update post status: %w", err)
	}
	if err = requireAffected(result); err != nil {
		return nil, err
	}
	return s.PostByID(ctx, id)
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete post: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) ListBusinesses(ctx context.Context, filter Filter) ([]Business, int, error) {
	filter = filter.Normalize()
	where, args := buildFilter(filter, "name")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM businesses`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres store: count businesses: %w", err)
	}

	query := `SELECT id, owner_id, name, category_id, status, verified, created_at, updated_at FROM businesses` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres store: list businesses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	businesses := make([]Business, 0, filter.Limit)
	for rows.Next() {
		var business Business
		if err = rows.Scan(&business.ID, &business.OwnerID, &business.Name, &business.CategoryID, &business.Status, &business.Verified, &business.CreatedAt, &business.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres store: scan business: %w", err)
		}
		businesses = append(businesses, business)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres store: iterate businesses: %w", err)
	}
	return businesses, total, nil
}

func (s *PostgresStore) BusinessByID(ctx context.Context, id string) (*Business, error) {
	var business Business
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, category_id, status, verified, created_at, updated_at FROM businesses WHERE id = $1`, id).
		Scan(&business.ID, &business.OwnerID, &business.Name, &business.CategoryID, &business.Status, &business.Verified, &business.CreatedAt, &business.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: business by id: %w", err)
	}
	return &business, nil
}

func (s *PostgresStore) UpdateBusinessStatus(ctx context.Context, id, status string) (*Business, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE businesses SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("postgres store: update business status: %w", err)
	}
	if err = requireAffected(result); err != nil {
		return nil, err
	}
	return s.BusinessByID(ctx, id)
}

func (s *PostgresStore) SetBusinessVerified(ctx context.Context, id string, verified bool) (*Business, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE businesses SET verified = $1, updated_at = NOW() WHERE id = $2`, verified, id)
	if err != nil {
		return nil, fmt.Errorf("postgres store: set business verified: %w", err)
	}
	if err = requireAffected(result); err != nil {
		return nil, err
	}
	return s.BusinessByID(ctx, id)
}

func (s *PostgresStore) ListReports(ctx context.Context, filter Filter) ([]Report, int, error) {
	filter = filter.Normalize()
	where, args := buildFilter(filter, "reason")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres store: count reports: %w", err)
	}

	query := `SELECT id, reporter_id, target_type, target_id, reason, status, note, created_at, updated_at FROM reports` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres store: list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reports := make([]Report, 0, filter.Limit)
	for rows.Next() {
		var report Report
		if err = rows.Scan(&report.ID, &report.ReporterID, &report.TargetType, &report.TargetID, &report.Reason, &report.Status, &report.Note, &report.CreatedAt, &report.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres store: scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres store: iterate reports: %w", err)
	}
	return reports, total, nil
}

func (s *PostgresStore) ReportByID(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := s.db.QueryRowContext(ctx,
		`SELECT id, reporter_id, target_type, target_id, reason, status, note, created_at, updated_at FROM reports WHERE id = $1`, id).
		Scan(&report.ID, &report.ReporterID, &report.TargetType, &report.TargetID, &report.Reason, &report.Status, &report.Note, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: report by id: %w", err)
	}
	return &report, nil
}

func (s *PostgresStore) UpdateReportStatus(ctx context.Context, id, status, note string) (*Report, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = $1, note = $2, updated_at = NOW() WHERE id = $3`, status, note, id)
	if err != nil {
		return nil, fmt.Errorf("postgres store: update report status: %w", err)
	}
	if err = requireAffected(result); err != nil {
		return nil, err
	}
	return s.ReportByID(ctx, id)
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]Category, 0)
	for rows.Next() {
		var category Category
		if err = rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres store: scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterate categories: %w", err)
	}
	return categories, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		category.ID, category.Name, category.Slug, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("postgres store: create category: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category *Category) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, slug = $2 WHERE id = $3`,
		category.Name, category.Slug, category.ID)
	if err != nil {
		return fmt.Errorf("postgres store: update category: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete category: %w", err)
	}
	return requireAffected(result)
}

func (s *PostgresStore) DashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	counts := &DashboardCounts{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE status = 'active'),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM businesses),
			(SELECT COUNT(*) FROM businesses WHERE verified),
			(SELECT COUNT(*) FROM reports WHERE status = 'pending'),
			(SELECT COUNT(*) FROM reports WHERE status = 'resolved'),
			(SELECT COUNT(*) FROM categories)
	`).Scan(
		&counts.TotalUsers, &counts.ActiveUsers, &counts.TotalPosts,
		&counts.TotalBusinesses, &counts.VerifiedBusinesses,
		&counts.PendingReports, &counts.ResolvedReports, &counts.TotalCategories,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres store: dashboard counts: %w", err)
	}
	return counts, nil
}

// buildFilter renders the WHERE clause for status/search filters shared by
// the list queries. searchColumns are matched case-insensitively.
func buildFilter(filter Filter, searchColumns ...string) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" && len(searchColumns) > 0 {
		args = append(args, "%"+filter.Search+"%")
		matches := make([]string, 0, len(searchColumns))
		for _, column := range searchColumns {
			matches = append(matches, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
		}
		clauses = append(clauses, "("+strings.Join(matches, " OR ")+")")
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres store: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the PostgreSQL unique_violation code; the stdlib driver
	// surfaces it in the error text.
	return err != nil && strings.Contains(err.Error(), "23505")
}
