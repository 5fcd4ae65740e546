package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthDTO struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    int64  `json:"uptime"`
	Version   string `json:"version"`
}

// GetHealth reports overall service status.
// GET /api/health
func (s *APIV1Service) GetHealth(c echo.Context) error {
	return respondOK(c, http.StatusOK, &healthDTO{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Now().Unix() - s.startTime,
		Version:   s.Profile.Version,
	})
}

// GetLiveness answers as long as the process is up.
// GET /api/health/live
func (s *APIV1Service) GetLiveness(c echo.Context) error {
	return respondOK(c, http.StatusOK, map[string]string{"status": "alive"})
}

// GetReadiness checks the database connection.
// GET /api/health/ready
func (s *APIV1Service) GetReadiness(c echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return respondError(c, http.StatusServiceUnavailable, "database unreachable")
	}
	return respondOK(c, http.StatusOK, map[string]string{"status": "ready"})
}
