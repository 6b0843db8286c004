package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-admin/internal/store"
)

var userStatuses = map[string]bool{"active": true, "suspended": true, "banned": true}

func (s *Server) handleListUsers(c *gin.Context) {
	filter := filterFromQuery(c)
	users, total, err := s.store.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, 500, "user listing failed")
		return
	}
	respondList(c, toUserDTOs(users), metaFor(filter, total))
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.store.UserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	respondOK(c, "", toUserDTO(*user))
}

func (s *Server) handleUpdateUserStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !userStatuses[req.Status] {
		respondError(c, 400, "status must be one of active, suspended, banned")
		return
	}
	user, err := s.store.UpdateUserStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	log.WithField("admin", adminIDFrom(c)).WithField("resource", "user").WithField("id", user.ID).
		WithField("status", req.Status).Info("user status updated")
	respondOK(c, "user status updated", toUserDTO(*user))
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.store.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	respondOK(c, "user deleted", nil)
}

// respondStoreError maps store errors to envelope responses.
func respondStoreError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, 404, resource+" not found")
	case errors.Is(err, store.ErrConflict):
		respondError(c, 409, resource+" already exists")
	default:
		respondError(c, 500, resource+" operation failed")
	}
}
