package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"myFoodFinder/domain"
	"myFoodFinder/internal/rest"
	"myFoodFinder/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct{}

func (stubStats) Stats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	out := make(map[string]domain.DecisionStat, len(ids))
	for _, id := range ids {
		out[id] = domain.DecisionStat{ID: id}
	}
	return out, nil
}

func newRouter() *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1")
	SetRecommendationRoutes(api, rest.NewRecommendationHandler(nil))
	SetAdminRoutes(api, rest.NewAdminHandler(stubStats{}))
	SetSystemRoutes(e, rest.NewHealthHandler("test", map[string]func() string{
		"places": func() string { return "closed" },
	}))
	return e
}

func TestRoutes_RequireAuth(t *testing.T) {
	e := newRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/recommendations?lat=1&lng=1"},
		{http.MethodPost, "/api/v1/recommendations/decision"},
		{http.MethodGet, "/api/v1/recommendations/debug"},
		{http.MethodGet, "/api/v1/recommendations/stream"},
		{http.MethodDelete, "/api/v1/recommendations/session"},
		{http.MethodGet, "/api/v1/admin/decision-stats?ids=a"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestRoutes_AdminRole(t *testing.T) {
	utils.SetJWTSecret("router-secret")
	e := newRouter()

	userToken, err := utils.GenerateJWT("1", "USER")
	require.NoError(t, err)
	adminToken, err := utils.GenerateJWT("2", "ADMIN")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/decision-stats?ids=a", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/decision-stats?ids=a", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	e := newRouter()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"places":"closed"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
