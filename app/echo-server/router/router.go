package router

import (
	"myFoodFinder/internal/middleware"
	"myFoodFinder/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations", middleware.AuthMiddleware())
	reco.GET("", handler.Recommend)
	reco.POST("/decision", handler.Decide)
	reco.GET("/debug", handler.Debug)
	reco.GET("/stream", handler.Stream)
	reco.DELETE("/session", handler.CloseSession)
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/decision-stats", handler.GetDecisionStats)
}

func SetSystemRoutes(e *echo.Echo, health *rest.HealthHandler) {
	e.GET("/healthz", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
