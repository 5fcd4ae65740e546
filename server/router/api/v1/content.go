package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lectern/lectern/store"
)

type contentMetadataDTO struct {
	Topic       string   `json:"topic"`
	Week        int      `json:"week"`
	Tags        []string `json:"tags"`
	ContentType string   `json:"contentType"`
}

type contentDTO struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	DescriptionHTML string             `json:"descriptionHtml,omitempty"`
	Category        string             `json:"category"`
	Metadata        contentMetadataDTO `json:"metadata"`
	FilePath        string             `json:"filePath,omitempty"`
	FileName        string             `json:"fileName,omitempty"`
	CreatedAt       int64              `json:"createdAt"`
	UpdatedAt       int64              `json:"updatedAt"`
}

func (s *APIV1Service) toContentDTO(content *store.Content, renderDescription bool) *contentDTO {
	dto := &contentDTO{
		ID:          content.ID,
		Title:       content.Title,
		Description: content.Description,
		Category:    string(content.Category),
		Metadata: contentMetadataDTO{
			Topic:       content.Topic,
			Week:        content.Week,
			Tags:        content.Tags,
			ContentType: string(content.ContentType),
		},
		FilePath:  content.FilePath,
		FileName:  content.FileName,
		CreatedAt: content.CreatedTs,
		UpdatedAt: content.UpdatedTs,
	}
	if renderDescription && content.Description != "" {
		html, err := s.renderer.Render(content.Description)
		if err != nil {
			slog.Warn("failed to render content description", "content_id", content.ID, "error", err)
		} else {
			dto.DescriptionHTML = html
		}
	}
	return dto
}

type upsertContentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Metadata    struct {
		Topic       string   `json:"topic"`
		Week        int      `json:"week"`
		Tags        []string `json:"tags"`
		ContentType string   `json:"contentType"`
	} `json:"metadata"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
}

func validContentCategory(value string) bool {
	return value == string(store.ContentCategoryTheory) || value == string(store.ContentCategoryLab)
}

func validContentType(value string) bool {
	switch store.ContentType(value) {
	case store.ContentTypeSlides, store.ContentTypePDF, store.ContentTypeCode, store.ContentTypeNotes:
		return true
	}
	return false
}

// ListContent lists course material, optionally filtered by category.
// GET /api/cms/content?category=theory|lab
func (s *APIV1Service) ListContent(c echo.Context) error {
	find := &store.FindContent{}
	if category := c.QueryParam("category"); category != "" {
		if !validContentCategory(category) {
			return respondError(c, http.StatusBadRequest, "category must be theory or lab")
		}
		value := store.ContentCategory(category)
		find.Category = &value
	}

	contents, err := s.Store.ListContents(c.Request().Context(), find)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to list content")
	}

	list := make([]*contentDTO, 0, len(contents))
	for _, content := range contents {
		list = append(list, s.toContentDTO(content, false))
	}
	return respondOK(c, http.StatusOK, list)
}

// CreateContent adds a course material item.
// POST /api/cms/content
func (s *APIV1Service) CreateContent(c echo.Context) error {
	var req upsertContentRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	if req.Title == "" {
		return respondError(c, http.StatusBadRequest, "title is required")
	}
	if !validContentCategory(req.Category) {
		return respondError(c, http.StatusBadRequest, "category must be theory or lab")
	}
	if !validContentType(req.Metadata.ContentType) {
		return respondError(c, http.StatusBadRequest, "contentType must be one of slides, pdf, code, notes")
	}

	now := time.Now().Unix()
	content, err := s.Store.CreateContent(c.Request().Context(), &store.Content{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    store.ContentCategory(req.Category),
		Topic:       req.Metadata.Topic,
		Week:        req.Metadata.Week,
		Tags:        req.Metadata.Tags,
		ContentType: store.ContentType(req.Metadata.ContentType),
		FilePath:    req.FilePath,
		FileName:    req.FileName,
		CreatedTs:   now,
		UpdatedTs:   now,
	})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to create content")
	}
	return respondOK(c, http.StatusCreated, s.toContentDTO(content, false))
}

// GetContent returns one item with its rendered description.
// GET /api/cms/content/:id
func (s *APIV1Service) GetContent(c echo.Context) error {
	id := c.Param("id")
	contents, err := s.Store.ListContents(c.Request().Context(), &store.FindContent{ID: &id})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to load content")
	}
	if len(contents) == 0 {
		return respondError(c, http.StatusNotFound, "content not found")
	}
	return respondOK(c, http.StatusOK, s.toContentDTO(contents[0], true))
}

// UpdateContent patches an item; only provided fields change.
// PUT /api/cms/content/:id
func (s *APIV1Service) UpdateContent(c echo.Context) error {
	var req map[string]any
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	now := time.Now().Unix()
	update := &store.UpdateContent{ID: c.Param("id"), UpdatedTs: &now}
	if title, ok := req["title"].(string); ok {
		update.Title = &title
	}
	if description, ok := req["description"].(string); ok {
		update.Description = &description
	}
	if category, ok := req["category"].(string); ok {
		if !validContentCategory(category) {
			return respondError(c, http.StatusBadRequest, "category must be theory or lab")
		}
		value := store.ContentCategory(category)
		update.Category = &value
	}
	if metadata, ok := req["metadata"].(map[string]any); ok {
		if topic, ok := metadata["topic"].(string); ok {
			update.Topic = &topic
		}
		if week, ok := metadata["week"].(float64); ok {
			value := int(week)
			update.Week = &value
		}
		if rawTags, ok := metadata["tags"].([]any); ok {
			tags := make([]string, 0, len(rawTags))
			for _, t := range rawTags {
				if tag, ok := t.(string); ok {
					tags = append(tags, tag)
				}
			}
			update.Tags = &tags
		}
		if contentType, ok := metadata["contentType"].(string); ok {
			if !validContentType(contentType) {
				return respondError(c, http.StatusBadRequest, "contentType must be one of slides, pdf, code, notes")
			}
			value := store.ContentType(contentType)
			update.ContentType = &value
		}
	}

	content, err := s.Store.UpdateContent(c.Request().Context(), update)
	if err != nil {
		return respondError(c, http.StatusNotFound, "content not found")
	}
	return respondOK(c, http.StatusOK, s.toContentDTO(content, false))
}

// DeleteContent removes an item.
// DELETE /api/cms/content/:id
func (s *APIV1Service) DeleteContent(c echo.Context) error {
	if err := s.Store.DeleteContent(c.Request().Context(), &store.DeleteContent{ID: c.Param("id")}); err != nil {
		return respondError(c, http.StatusNotFound, "content not found")
	}
	return respondOK(c, http.StatusOK, nil)
}
