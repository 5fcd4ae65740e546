package v1

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lectern/lectern/store"
)

type tagDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsPublished bool   `json:"isPublished"`
	Color       string `json:"color"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func toTagDTO(t *store.Tag) *tagDTO {
	return &tagDTO{
		ID:          t.ID,
		Title:       t.Title,
		Slug:        t.Slug,
		Description: t.Description,
		IsPublished: t.IsPublished,
		Color:       t.Color,
		CreatedAt:   t.CreatedTs,
		UpdatedAt:   t.UpdatedTs,
	}
}

type upsertTagRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsPublished *bool  `json:"isPublished"`
	Color       string `json:"color"`
}

// ListTags lists tags alphabetically.
// GET /api/tags?published=true
func (s *APIV1Service) ListTags(c echo.Context) error {
	find := &store.FindTag{}
	if c.QueryParam("published") == "true" {
		published := true
		find.IsPublished = &published
	}

	tags, err := s.Store.ListTags(c.Request().Context(), find)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to list tags")
	}

	list := make([]*tagDTO, 0, len(tags))
	for _, tag := range tags {
		list = append(list, toTagDTO(tag))
	}
	return respondOK(c, http.StatusOK, list)
}

// CreateTag creates a tag with slug and color defaults.
// POST /api/tags
func (s *APIV1Service) CreateTag(c echo.Context) error {
	var req upsertTagRequest
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
	color := req.Color
	if color == "" {
		color = store.DefaultTagColor
	}

	now := time.Now().Unix()
	tag := &store.Tag{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Color:       color,
		CreatedTs:   now,
		UpdatedTs:   now,
	}
	if req.IsPublished != nil {
		tag.IsPublished = *req.IsPublished
	}

	created, err := s.Store.CreateTag(c.Request().Context(), tag)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to create tag")
	}
	return respondOK(c, http.StatusCreated, toTagDTO(created))
}

// GetTag returns one tag.
// GET /api/tags/:id
func (s *APIV1Service) GetTag(c echo.Context) error {
	id := c.Param("id")
	tags, err := s.Store.ListTags(c.Request().Context(), &store.FindTag{ID: &id})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to load tag")
	}
	if len(tags) == 0 {
		return respondError(c, http.StatusNotFound, "tag not found")
	}
	return respondOK(c, http.StatusOK, toTagDTO(tags[0]))
}

// UpdateTag patches a tag; only provided fields change.
// PUT /api/tags/:id
func (s *APIV1Service) UpdateTag(c echo.Context) error {
	var req upsertTagRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	now := time.Now().Unix()
	update := &store.UpdateTag{ID: c.Param("id"), UpdatedTs: &now}
	if req.Title != "" {
		update.Title = &req.Title
	}
	if req.Slug != "" {
		update.Slug = &req.Slug
	}
	if req.Description != "" {
		update.Description = &req.Description
	}
	if req.Color != "" {
		update.Color = &req.Color
	}
	update.IsPublished = req.IsPublished

	tag, err := s.Store.UpdateTag(c.Request().Context(), update)
	if err != nil {
		return respondError(c, http.StatusNotFound, "tag not found")
	}
	return respondOK(c, http.StatusOK, toTagDTO(tag))
}

// DeleteTag removes a tag.
// DELETE /api/tags/:id
func (s *APIV1Service) DeleteTag(c echo.Context) error {
	if err := s.Store.DeleteTag(c.Request().Context(), &store.DeleteTag{ID: c.Param("id")}); err != nil {
		return respondError(c, http.StatusNotFound, "tag not found")
	}
	return respondOK(c, http.StatusOK, nil)
}
