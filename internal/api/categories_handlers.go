package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loopline-app/loopline-admin/internal/store"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, 500, "category listing failed")
		return
	}
	respondOK(c, "", toCategoryDTOs(categories))
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, 400, "name is required")
		return
	}
	category := &store.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Slug:      slugify(req.Slug, req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateCategory(c.Request.Context(), category); err != nil {
		respondStoreError(c, err, "category")
		return
	}
	respondOK(c, "category created", toCategoryDTO(*category))
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, 400, "name is required")
		return
	}
	category := &store.Category{
		ID:   c.Param("id"),
		Name: req.Name,
		Slug: slugify(req.Slug, req.Name),
	}
	if err := s.store.UpdateCategory(c.Request.Context(), category); err != nil {
		respondStoreError(c, err, "category")
		return
	}
	updated, err := s.store.ListCategories(c.Request.Context())
	if err == nil {
		for _, existing := range updated {
			if existing.ID == category.ID {
				respondOK(c, "category updated", toCategoryDTO(existing))
				return
			}
		}
	}
	respondOK(c, "category updated", toCategoryDTO(*category))
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	if err := s.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err, "category")
		return
	}
	respondOK(c, "category deleted", nil)
}

func slugify(slug, fallback string) string {
	source := slug
	if strings.TrimSpace(source) == "" {
		source = fallback
	}
	source = strings.ToLower(strings.TrimSpace(source))
	return strings.ReplaceAll(source, " ", "-")
}
