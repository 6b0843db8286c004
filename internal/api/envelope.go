// Package api implements the admin backend HTTP surface on gin. Every
// response, success or failure, uses the uniform envelope
// {success, message, data, error?}; list responses additionally carry
// {meta: {page, limit, total_count, total_pages}}.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/loopline-app/loopline-admin/internal/store"
)

// listMeta is the pagination block attached to list responses.
type listMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

func metaFor(filter store.Filter, total int) listMeta {
	filter = filter.Normalize()
	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}
	return listMeta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(200, gin.H{"success": true, "message": message, "data": data})
}

func respondList(c *gin.Context, data any, meta listMeta) {
	c.JSON(200, gin.H{"success": true, "message": "", "data": data, "meta": meta})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message, "data": nil, "error": message})
}
