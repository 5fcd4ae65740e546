package v1

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lectern/lectern/store"
)

type categoryDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	IsPublished bool    `json:"isPublished"`
	ParentID    *string `json:"parentId"`
	Position    int     `json:"position"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
}

func toCategoryDTO(c *store.Category) *categoryDTO {
	return &categoryDTO{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		IsPublished: c.IsPublished,
		ParentID:    c.ParentID,
		Position:    c.Position,
		CreatedAt:   c.CreatedTs,
		UpdatedAt:   c.UpdatedTs,
	}
}

type upsertCategoryRequest struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	IsPublished *bool   `json:"isPublished"`
	ParentID    *string `json:"parentId"`
	Position    *int    `json:"position"`
}

// ListCategories lists categories ordered by position.
// GET /api/categories?published=true
func (s *APIV1Service) ListCategories(c echo.Context) error {
	find := &store.FindCategory{}
	if c.QueryParam("published") == "true" {
		published := true
		find.IsPublished = &published
	}

	categories, err := s.Store.ListCategories(c.Request().Context(), find)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to list categories")
	}

	list := make([]*categoryDTO, 0, len(categories))
	for _, category := range categories {
		list = append(list, toCategoryDTO(category))
	}
	return respondOK(c, http.StatusOK, list)
}

// CreateCategory creates a category; the slug is derived from the title
// when not provided.
// POST /api/categories
func (s *APIV1Service) CreateCategory(c echo.Context) error {
	var req upsertCategoryRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	if req.Title == "" {
		return respondError(c, http.StatusBadRequest, "title is required")
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}

	now := time.Now().Unix()
	category := &store.Category{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		CreatedTs:   now,
		UpdatedTs:   now,
	}
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}
	if req.Position != nil {
		category.Position = *req.Position
	}

	created, err := s.Store.CreateCategory(c.Request().Context(), category)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to create category")
	}
	return respondOK(c, http.StatusCreated, toCategoryDTO(created))
}

// GetCategory returns one category.
// GET /api/categories/:id
func (s *APIV1Service) GetCategory(c echo.Context) error {
	id := c.Param("id")
	categories, err := s.Store.ListCategories(c.Request().Context(), &store.FindCategory{ID: &id})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to load category")
	}
	if len(categories) == 0 {
		return respondError(c, http.StatusNotFound, "category not found")
	}
	return respondOK(c, http.StatusOK, toCategoryDTO(categories[0]))
}

// UpdateCategory patches a category; only provided fields change.
// PUT /api/categories/:id
func (s *APIV1Service) UpdateCategory(c echo.Context) error {
	var req upsertCategoryRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	now := time.Now().Unix()
	update := &store.UpdateCategory{ID: c.Param("id"), UpdatedTs: &now}
	if req.Title != "" {
		update.Title = &req.Title
	}
	if req.Slug != "" {
		update.Slug = &req.Slug
	}
	if req.Description != "" {
		update.Description = &req.Description
	}
	update.IsPublished = req.IsPublished
	update.ParentID = req.ParentID
	update.Position = req.Position

	category, err := s.Store.UpdateCategory(c.Request().Context(), update)
	if err != nil {
		return respondError(c, http.StatusNotFound, "category not found")
	}
	return respondOK(c, http.StatusOK, toCategoryDTO(category))
}

// DeleteCategory removes a category.
// DELETE /api/categories/:id
func (s *APIV1Service) DeleteCategory(c echo.Context) error {
	if err := s.Store.DeleteCategory(c.Request().Context(), &store.DeleteCategory{ID: c.Param("id")}); err != nil {
		return respondError(c, http.StatusNotFound, "category not found")
	}
	return respondOK(c, http.StatusOK, nil)
}
