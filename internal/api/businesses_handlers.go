package api

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var businessStatuses = map[string]bool{"active": true, "suspended": true}

func (s *Server) handleListBusinesses(c *gin.Context) {
	filter := filterFromQuery(c)
	businesses, total, err := s.store.ListBusinesses(c.Request.Context(), filter)
	if err != nil {
		respondError(c, 500, "business listing failed")
		return
	}
	respondList(c, toBusinessDTOs(businesses), metaFor(filter, total))
}

func (s *Server) handleGetBusiness(c *gin.Context) {
	business, err := s.store.BusinessByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "business")
		return
	}
	respondOK(c, "", toBusinessDTO(*business))
}

func (s *Server) handleUpdateBusinessStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !businessStatuses[req.Status] {
		respondError(c, 400, "status must be one of active, suspended")
		return
	}
	business, err := s.store.UpdateBusinessStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondStoreError(c, err, "business")
		return
	}
	log.WithField("admin", adminIDFrom(c)).WithField("resource", "business").WithField("id", business.ID).
		WithField("status", req.Status).Info("business status updated")
	respondOK(c, "business status updated", toBusinessDTO(*business))
}

func (s *Server) handleVerifyBusiness(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		respondError(c, 400, "verified flag is required")
		return
	}
	business, err := s.store.SetBusinessVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		respondStoreError(c, err, "business")
		return
	}
	log.WithField("admin", adminIDFrom(c)).WithField("resource", "business").WithField("id", business.ID).
		Infof("business verification set to %t", *req.Verified)
	respondOK(c, "business verification updated", toBusinessDTO(*business))
}
