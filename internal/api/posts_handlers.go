package api

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var postStatuses = map[string]bool{"published": true, "hidden": true, "removed": true}

func (s *Server) handleListPosts(c *gin.Context) {
	filter := filterFromQuery(c)
	posts, total, err := s.store.ListPosts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, 500, "post listing failed")
		return
	}
	respondList(c, toPostDTOs(posts), metaFor(filter, total))
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.store.PostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "post")
		return
	}
	respondOK(c, "", toPostDTO(*post))
}

func (s *Server) handleUpdatePostStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !postStatuses[req.Status] {
		respondError(c, 400, "status must be one of published, hidden, removed")
		return
	}
	post, err := s.store.UpdatePostStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondStoreError(c, err, "post")
		return
	}
	log.WithField("admin", adminIDFrom(c)).WithField("resource", "post").WithField("id", post.ID).
		WithField("status", req.Status).Info("post status updated")
	respondOK(c, "post status updated", toPostDTO(*post))
}

func (s *Server) handleDeletePost(c *gin.Context) {
	if err := s.store.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err, "post")
		return
	}
	respondOK(c, "post deleted", nil)
}
