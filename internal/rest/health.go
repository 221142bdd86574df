package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	version string
	checks  map[string]func() string
}

// NewHealthHandler reports version plus the named component states.
func NewHealthHandler(version string, checks map[string]func() string) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// GET /healthz
func (h *HealthHandler) Health(c echo.Context) error {
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		components[name] = check()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "ok",
		"version":    h.version,
		"components": components,
	})
}
