package middleware

import (
	"myFoodFinder/pkg/logger"

	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// TraceMiddleware reuses the caller's X-Request-ID or mints one, echoes it
// back, and stores it on the request context for logging.
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := req.Header.Get(HeaderRequestID)
			if traceID == "" || len(traceID) > 128 {
				traceID = logger.NewTraceID()
			}

			c.Response().Header().Set(HeaderRequestID, traceID)
			c.SetRequest(req.WithContext(logger.ContextWithTraceID(req.Context(), traceID)))

			return next(c)
		}
	}
}
