package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lectern/lectern/server/service/chat"
	"github.com/lectern/lectern/store"
)

type chatMessageDTO struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type chatSessionDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type chatSessionDetailDTO struct {
	chatSessionDTO
	Messages []*chatMessageDTO `json:"messages"`
}

func toChatMessageDTO(m *store.ChatMessage) *chatMessageDTO {
	return &chatMessageDTO{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.CreatedTs,
	}
}

func toChatSessionDTO(s *store.ChatSession) chatSessionDTO {
	return chatSessionDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		Title:     s.Title,
		CreatedAt: s.CreatedTs,
		UpdatedAt: s.UpdatedTs,
	}
}

func toChatSessionDetailDTO(detail *chat.SessionDetail) *chatSessionDetailDTO {
	messages := make([]*chatMessageDTO, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		messages = append(messages, toChatMessageDTO(m))
	}
	return &chatSessionDetailDTO{
		chatSessionDTO: toChatSessionDTO(detail.Session),
		Messages:       messages,
	}
}

type sendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// SendMessage runs one chat turn.
// POST /api/chat/message
func (s *APIV1Service) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	if req.SessionID == "" || req.Message == "" {
		return respondError(c, http.StatusBadRequest, "sessionId and message are required")
	}

	turn, err := s.Orchestrator.SendMessage(c.Request().Context(), req.SessionID, requestUserID(c), req.Message)
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, http.StatusOK, map[string]any{
		"message": toChatMessageDTO(turn.Message),
		"session": toChatSessionDetailDTO(turn.Session),
	})
}

// GetChatHistory lists the caller's sessions, most recent first.
// GET /api/chat/history
func (s *APIV1Service) GetChatHistory(c echo.Context) error {
	sessions, err := s.Orchestrator.ListSessions(c.Request().Context(), requestUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	list := make([]chatSessionDTO, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, toChatSessionDTO(session))
	}
	return respondOK(c, http.StatusOK, list)
}

type createSessionRequest struct {
	Title string `json:"title"`
}

// CreateSession creates a new chat session.
// POST /api/chat/session
func (s *APIV1Service) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	session, err := s.Orchestrator.CreateSession(c.Request().Context(), requestUserID(c), req.Title)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusCreated, toChatSessionDTO(session))
}

// GetSession returns one session with its messages.
// GET /api/chat/session/:sessionId
func (s *APIV1Service) GetSession(c echo.Context) error {
	detail, err := s.Orchestrator.GetSession(c.Request().Context(), c.Param("sessionId"), requestUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, http.StatusOK, toChatSessionDetailDTO(detail))
}

// DeleteSession removes a session and its messages.
// DELETE /api/chat/session/:sessionId
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	removed, err := s.Orchestrator.DeleteSession(c.Request().Context(), c.Param("sessionId"), requestUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if !removed {
		return respondError(c, http.StatusNotFound, "session not found")
	}
	return respondOK(c, http.StatusOK, nil)
}
