package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for development and tests. All maps
// are guarded by a single mutex; list results are ordered newest first.
type MemoryStore struct {
	mu         sync.RWMutex
	admins     map[string]*Admin
	sessions   map[string]*RefreshSession
	users      map[string]*User
	posts      map[string]*Post
	businesses map[string]*Business
	reports    map[string]*Report
	categories map[string]*Category
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:     make(map[string]*Admin),
		sessions:   make(map[string]*RefreshSession),
		users:      make(map[string]*User),
		posts:      make(map[string]*Post),
		businesses: make(map[string]*Business),
		reports:    make(map[string]*Report),
		categories: make(map[string]*Category),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CountAdmins(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), nil
}

func (s *MemoryStore) CreateAdmin(ctx context.Context, admin *Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if strings.EqualFold(existing.Email, admin.Email) {
			return ErrConflict
		}
	}
	clone := *admin
	s.admins[admin.ID] = &clone
	return nil
}

func (s *MemoryStore) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if strings.EqualFold(admin.Email, email) {
			clone := *admin
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AdminByID(ctx context.Context, id string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *admin
	return &clone, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *RefreshSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return ErrConflict
	}
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

func (s *MemoryStore) SessionByToken(ctx context.Context, token string) (*RefreshSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *MemoryStore) RevokeSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	session.Revoked = true
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context, filter Filter) ([]User, int, error) {
	filter = filter.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]User, 0, len(s.users))
	for _, user := range s.users {
		if filter.Status != "" && user.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, user.Name, user.Email) {
			continue
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID) })
	total := len(matched)
	return paginate(matched, filter), total, nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) UpdateUserStatus(ctx context.Context, id, status string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) ListPosts(ctx context.Context, filter Filter) ([]Post, int, error) {
	filter = filter.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, post.Content, post.AuthorName) {
			continue
		}
		matched = append(matched, *post)
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID) })
	total := len(matched)
	return paginate(matched, filter), total, nil
}

func (s *MemoryStore) PostByID(ctx context.Context, id string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *post
	return &clone, nil
}

func (s *MemoryStore) UpdatePostStatus(ctx context.Context, id, status string) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post.Status = status
	post.UpdatedAt = time.Now().UTC()
	clone := *post
	return &clone, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) ListBusinesses(ctx context.Context, filter Filter) ([]Business, int, error) {
	filter = filter.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Business, 0, len(s.businesses))
	for _, business := range s.businesses {
		if filter.Status != "" && business.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, business.Name) {
			continue
		}
		matched = append(matched, *business)
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID) })
	total := len(matched)
	return paginate(matched, filter), total, nil
}

func (s *MemoryStore) BusinessByID(ctx context.Context, id string) (*Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	business, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *business
	return &clone, nil
}

func (s *MemoryStore) UpdateBusinessStatus(ctx context.Context, id, status string) (*Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	business, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	business.Status = status
	business.UpdatedAt = time.Now().UTC()
	clone := *business
	return &clone, nil
}

func (s *MemoryStore) SetBusinessVerified(ctx context.Context, id string, verified bool) (*Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	business, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	business.Verified = verified
	business.UpdatedAt = time.Now().UTC()
	clone := *business
	return &clone, nil
}

func (s *MemoryStore) ListReports(ctx context.Context, filter Filter) ([]Report, int, error) {
	filter = filter.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Report, 0, len(s.reports))
	for _, report := range s.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, report.Reason) {
			continue
		}
		matched = append(matched, *report)
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID) })
	total := len(matched)
	return paginate(matched, filter), total, nil
}

func (s *MemoryStore) ReportByID(ctx context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *report
	return &clone, nil
}

func (s *MemoryStore) UpdateReportStatus(ctx context.Context, id, status, note string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	report.Status = status
	report.Note = note
	report.UpdatedAt = time.Now().UTC()
	clone := *report
	return &clone, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]Category, 0, len(s.categories))
	for _, category := range s.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, category *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Slug, category.Slug) {
			return ErrConflict
		}
	}
	clone := *category
	s.categories[category.ID] = &clone
	return nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, category *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[category.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = category.Name
	existing.Slug = category.Slug
	return nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) DashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := &DashboardCounts{
		TotalUsers:      len(s.users),
		TotalPosts:      len(s.posts),
		TotalBusinesses: len(s.businesses),
		TotalCategories: len(s.categories),
	}
	for _, user := range s.users {
		if user.Status == "active" {
			counts.ActiveUsers++
		}
	}
	for _, business := range s.businesses {
		if business.Verified {
			counts.VerifiedBusinesses++
		}
	}
	for _, report := range s.reports {
		switch report.Status {
		case "pending":
			counts.PendingReports++
		case "resolved":
			counts.ResolvedReports++
		}
	}
	return counts, nil
}

// InsertUser adds a user record, used by seeding and tests.
func (s *MemoryStore) InsertUser(user *User) {
	s.mu.Lock()
	clone := *user
	s.users[user.ID] = &clone
	s.mu.Unlock()
}

// InsertPost adds a post record, used by seeding and tests.
func (s *MemoryStore) InsertPost(post *Post) {
	s.mu.Lock()
	clone := *post
	s.posts[post.ID] = &clone
	s.mu.Unlock()
}

// InsertBusiness adds a business record, used by seeding and tests.
func (s *MemoryStore) InsertBusiness(business *Business) {
	s.mu.Lock()
	clone := *business
	s.businesses[business.ID] = &clone
	s.mu.Unlock()
}

// InsertReport adds a report record, used by seeding and tests.
func (s *MemoryStore) InsertReport(report *Report) {
	s.mu.Lock()
	clone := *report
	s.reports[report.ID] = &clone
	s.mu.Unlock()
}

func matchesSearch(needle string, haystacks ...string) bool {
	needle = strings.ToLower(needle)
	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func newerFirst(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}

func paginate[T any](items []T, filter Filter) []T {
	offset := filter.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + filter.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
