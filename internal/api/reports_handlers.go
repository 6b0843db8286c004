package api

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var reportStatuses = map[string]bool{"pending": true, "resolved": true, "dismissed": true}

func (s *Server) handleListReports(c *gin.Context) {
	filter := filterFromQuery(c)
	reports, total, err := s.store.ListReports(c.Request.Context(), filter)
	if err != nil {
		respondError(c, 500, "report listing failed")
		return
	}
	respondList(c, toReportDTOs(reports), metaFor(filter, total))
}

func (s *Server) handleGetReport(c *gin.Context) {
	report, err := s.store.ReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "report")
		return
	}
	respondOK(c, "", toReportDTO(*report))
}

func (s *Server) handleUpdateReportStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !reportStatuses[req.Status] {
		respondError(c, 400, "status must be one of pending, resolved, dismissed")
		return
	}
	report, err := s.store.UpdateReportStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondStoreError(c, err, "report")
		return
	}
	log.WithField("admin", adminIDFrom(c)).WithField("resource", "report").WithField("id", report.ID).
		WithField("status", req.Status).Info("report status updated")
	respondOK(c, "report status updated", toReportDTO(*report))
}
