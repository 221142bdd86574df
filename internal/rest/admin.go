package rest

import (
	"context"
	"net/http"
	"strings"

	"myFoodFinder/domain"

	"github.com/labstack/echo/v4"
)

const maxStatsIDs = 200

type (
	AdminHandler struct {
		stats StatsReader
	}

	StatsReader interface {
		Stats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error)
	}
)

func NewAdminHandler(stats StatsReader) *AdminHandler {
	return &AdminHandler{stats: stats}
}

// GET /api/v1/admin/decision-stats?ids=a,b,c
func (h *AdminHandler) GetDecisionStats(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "ids is required",
		})
	}

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "ids is required",
		})
	}
	if len(ids) > maxStatsIDs {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "too many ids",
		})
	}

	stats, err := h.stats.Stats(c.Request().Context(), ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	out := make([]domain.DecisionStat, 0, len(ids))
	for _, id := range ids {
		out = append(out, stats[id])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": out,
	})
}
