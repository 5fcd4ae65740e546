// Package v1 exposes the REST API. Every response uses a common envelope:
// {"success": true, "data": ...} or {"success": false, "message": "..."}.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lectern/lectern/internal/profile"
	"github.com/lectern/lectern/plugin/markdown"
	apierrors "github.com/lectern/lectern/server/internal/errors"
	"github.com/lectern/lectern/server/middleware"
	"github.com/lectern/lectern/server/service/chat"
	"github.com/lectern/lectern/store"
)

// userIDHeader identifies the caller until real authentication lands.
const (
	userIDHeader  = "X-User-Id"
	defaultUserID = "default-user"
)

// APIV1Service registers and serves all v1 routes.
type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	Orchestrator *chat.Orchestrator

	renderer    *markdown.Renderer
	rateLimiter *middleware.RateLimiter
	startTime   int64
}

func NewAPIV1Service(profile *profile.Profile, st *store.Store, orchestrator *chat.Orchestrator, startTime int64) *APIV1Service {
	return &APIV1Service{
		Profile:      profile,
		Store:        st,
		Orchestrator: orchestrator,
		renderer:     markdown.NewRenderer(),
		rateLimiter:  middleware.NewRateLimiter(2, 5),
		startTime:    startTime,
	}
}

// RegisterRoutes attaches all v1 handlers to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	chatGroup := api.Group("/chat")
	chatGroup.POST("/message", s.SendMessage, s.rateLimiter.Middleware(requestUserID))
	chatGroup.GET("/history", s.GetChatHistory)
	chatGroup.POST("/session", s.CreateSession)
	chatGroup.GET("/session/:sessionId", s.GetSession)
	chatGroup.DELETE("/session/:sessionId", s.DeleteSession)

	cms := api.Group("/cms")
	cms.GET("/content", s.ListContent)
	cms.POST("/content", s.CreateContent)
	cms.GET("/content/:id", s.GetContent)
	cms.PUT("/content/:id", s.UpdateContent)
	cms.DELETE("/content/:id", s.DeleteContent)

	api.GET("/categories", s.ListCategories)
	api.POST("/categories", s.CreateCategory)
	api.GET("/categories/:id", s.GetCategory)
	api.PUT("/categories/:id", s.UpdateCategory)
	api.DELETE("/categories/:id", s.DeleteCategory)

	api.GET("/tags", s.ListTags)
	api.POST("/tags", s.CreateTag)
	api.GET("/tags/:id", s.GetTag)
	api.PUT("/tags/:id", s.UpdateTag)
	api.DELETE("/tags/:id", s.DeleteTag)

	api.GET("/users", s.ListUsers)
	api.POST("/users", s.CreateUser)
	api.GET("/users/:id", s.GetUser)
	api.PUT("/users/:id", s.UpdateUser)
	api.DELETE("/users/:id", s.DeleteUser)

	api.GET("/health", s.GetHealth)
	api.GET("/health/live", s.GetLiveness)
	api.GET("/health/ready", s.GetReadiness)
}

// requestUserID extracts the caller identity from the placeholder header.
func requestUserID(c echo.Context) string {
	if id := c.Request().Header.Get(userIDHeader); id != "" {
		return id
	}
	return defaultUserID
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c echo.Context, status int, data any) error {
	return c.JSON(status, &envelope{Success: true, Data: data})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, &envelope{Success: false, Message: message})
}

// respondServiceError maps coded service errors onto HTTP statuses.
func respondServiceError(c echo.Context, err error) error {
	code := apierrors.GetCodeFromError(err, apierrors.ErrCodePersistenceFailed)
	status := http.StatusInternalServerError
	switch code {
	case apierrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apierrors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apierrors.ErrCodePermissionDenied:
		status = http.StatusForbidden
	case apierrors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case apierrors.ErrCodeGenerationFailed:
		status = http.StatusBadGateway
	}

	message := err.Error()
	if serviceErr, ok := err.(*apierrors.ServiceError); ok {
		message = serviceErr.Message
	}
	return respondError(c, status, message)
}
