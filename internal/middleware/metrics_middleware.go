package middleware

import (
	"errors"
	"strconv"
	"time"

	"myFoodFinder/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records latency and status per matched route.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			}

			metrics.RecommendLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			metrics.RecommendRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
