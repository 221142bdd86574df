package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"myFoodFinder/pkg/logger"
	"myFoodFinder/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("user_id"),
		"trace_id": logger.TraceIDFromContext(c.Request().Context()),
	})
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	valid, err := utils.GenerateJWT("7", "USER")
	require.NoError(t, err)
	badUser, err := utils.GenerateJWT("seven", "USER")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"non numeric user", "Bearer " + badUser, http.StatusForbidden},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, AuthMiddleware()(okHandler)(c))
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, uint(7), c.Get("user_id"))
				assert.Equal(t, "USER", c.Get("role"))
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()

	for role, want := range map[string]int{"ADMIN": http.StatusOK, "admin": http.StatusOK, "USER": http.StatusForbidden} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("role", role)

		require.NoError(t, AdminOnly()(okHandler)(c))
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestTraceMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(TraceMiddleware())
	e.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	assert.Contains(t, rec.Body.String(), `"trace_id":"abc-123"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(MetricsMiddleware())
	e.GET("/boom", func(c echo.Context) error { return errors.New("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "kaboom")
}
