package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-admin/internal/auth"
	"github.com/loopline-app/loopline-admin/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, 400, "email and password are required")
		return
	}

	admin, err := s.store.AdminByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, 401, "invalid email or password")
			return
		}
		respondError(c, 500, "login failed")
		return
	}
	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		respondError(c, 401, "invalid email or password")
		return
	}

	pair, err := s.tokens.IssuePair(c.Request.Context(), admin)
	if err != nil {
		log.Errorf("issue token pair failed: %v", err)
		respondError(c, 500, "login failed")
		return
	}
	log.WithField("admin", admin.Email).Info("admin logged in")
	respondOK(c, "login successful", gin.H{"user": toAdminDTO(admin), "tokens": pair})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, 400, "refresh_token is required")
		return
	}

	_, pair, err := s.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respondError(c, 401, "invalid or expired refresh token")
			return
		}
		log.Errorf("refresh failed: %v", err)
		respondError(c, 500, "refresh failed")
		return
	}
	respondOK(c, "token refreshed", gin.H{"tokens": pair})
}

func (s *Server) handleLogout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		log.Warnf("revoke refresh session failed: %v", err)
	}
	respondOK(c, "logged out", nil)
}

func (s *Server) handleMe(c *gin.Context) {
	admin, err := s.store.AdminByID(c.Request.Context(), adminIDFrom(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, 401, "account no longer exists")
			return
		}
		respondError(c, 500, "profile lookup failed")
		return
	}
	respondOK(c, "", toAdminDTO(admin))
}

func (s *Server) handleDashboard(c *gin.Context) {
	counts, err := s.store.DashboardCounts(c.Request.Context())
	if err != nil {
		respondError(c, 500, "dashboard lookup failed")
		return
	}
	respondOK(c, "", toDashboardDTO(counts))
}
