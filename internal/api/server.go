package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-admin/internal/auth"
	"github.com/loopline-app/loopline-admin/internal/config"
	"github.com/loopline-app/loopline-admin/internal/store"
)

// Server is the admin backend HTTP server.
type Server struct {
	cfg    *config.Config
	store  store.Store
	tokens *auth.TokenService
	engine *gin.Engine
	http   *http.Server
}

var ginModeOnce sync.Once

// NewServer wires the gin engine, middleware, and routes.
func NewServer(cfg *config.Config, st store.Store, tokens *auth.TokenService) *Server {
	ginModeOnce.Do(func() {
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
	})
	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), corsMiddleware())

	s := &Server{cfg: cfg, store: st, tokens: tokens, engine: engine}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine, used by tests to serve the API
// through httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.POST("/auth/login", s.handleLogin)
	s.engine.POST("/auth/refresh", s.handleRefresh)

	s.engine.GET("/users/me", s.authRequired(), s.handleMe)

	adminGroup := s.engine.Group("/admin")
	adminGroup.POST("/auth/login", s.handleLogin)
	adminGroup.POST("/auth/logout", s.authRequired(), s.handleLogout)

	protected := adminGroup.Group("", s.authRequired())
	{
		protected.GET("/dashboard", s.handleDashboard)

		protected.GET("/users", s.handleListUsers)
		protected.GET("/users/:id", s.handleGetUser)
		protected.PATCH("/users/:id/status", s.handleUpdateUserStatus)
		protected.DELETE("/users/:id", s.handleDeleteUser)

		protected.GET("/posts", s.handleListPosts)
		protected.GET("/posts/:id", s.handleGetPost)
		protected.PATCH("/posts/:id/status", s.handleUpdatePostStatus)
		protected.DELETE("/posts/:id", s.handleDeletePost)

		protected.GET("/businesses", s.handleListBusinesses)
		protected.GET("/businesses/:id", s.handleGetBusiness)
		protected.PATCH("/businesses/:id/status", s.handleUpdateBusinessStatus)
		protected.PATCH("/businesses/:id/verify", s.handleVerifyBusiness)

		protected.GET("/reports", s.handleListReports)
		protected.GET("/reports/:id", s.handleGetReport)
		protected.PATCH("/reports/:id/status", s.handleUpdateReportStatus)

		protected.GET("/categories", s.handleListCategories)
		protected.POST("/categories", s.handleCreateCategory)
		protected.PUT("/categories/:id", s.handleUpdateCategory)
		protected.DELETE("/categories/:id", s.handleDeleteCategory)
	}
}

// Start begins serving on the configured port. It returns once the listener
// is closed.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("admin backend listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: serve failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// filterFromQuery extracts the shared pagination and filter parameters.
func filterFromQuery(c *gin.Context) store.Filter {
	filter := store.Filter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if page, err := parsePositive(c.Query("page")); err == nil {
		filter.Page = page
	}
	if limit, err := parsePositive(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	return filter.Normalize()
}

func parsePositive(raw string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("not positive")
	}
	return n, nil
}
