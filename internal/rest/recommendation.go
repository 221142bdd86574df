package rest

import (
	"context"
	"errors"
	"net/http"

	"myFoodFinder/business/bandit"
	"myFoodFinder/business/recommendation"
	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userID uint, loc domain.Location) (domain.RecommendationState, error)
		Decide(ctx context.Context, userID uint, placeID string, accepted bool) (domain.RecommendationState, error)
		Debug(ctx context.Context, userID uint) ([]domain.DebugRecommendation, error)
		Subscribe(userID uint) (<-chan domain.RecommendationState, func())
		CloseSession(userID uint)
	}

	DecisionRequest struct {
		PlaceID  string `json:"place_id" validate:"required"`
		Decision string `json:"decision" validate:"required,oneof=accept reject"`
	}
)

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
	}
}

func userIDFrom(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}

// GET /api/v1/recommendations?lat=-6.2&lng=106.8
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if c.QueryParam("lat") == "" || c.QueryParam("lng") == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "lat and lng are required"})
	}

	var loc domain.Location
	if err := c.Bind(&loc); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&loc); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	state, err := h.service.Recommend(c.Request().Context(), userID, loc)
	if err != nil {
		return h.recommendError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(state))
}

// POST /api/v1/recommendations/decision
// body: { "place_id": "...", "decision": "accept" | "reject" }
func (h *RecommendationHandler) Decide(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	accepted, err := bandit.AcceptedFromDecision(req.Decision)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	state, err := h.service.Decide(c.Request().Context(), userID, req.PlaceID, accepted)
	if err != nil && !errors.Is(err, recommendation.ErrRecordFailure) {
		return h.recommendError(c, err)
	}
	// a failed stats write is already reported in state.Warning

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(state))
}

// GET /api/v1/recommendations/debug
func (h *RecommendationHandler) Debug(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	recs, err := h.service.Debug(c.Request().Context(), userID)
	if err != nil {
		return h.recommendError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// DELETE /api/v1/recommendations/session
func (h *RecommendationHandler) CloseSession(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	h.service.CloseSession(userID)
	return c.JSON(http.StatusOK, fres.Response.StatusOK("session closed"))
}

func (h *RecommendationHandler) recommendError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recommendation.ErrRecommendationInFlight):
		status = http.StatusConflict
	case errors.Is(err, recommendation.ErrFetchFailure):
		status = http.StatusBadGateway
	case errors.Is(err, recommendation.ErrStatsFailure):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		logger.Error("recommendation request failed",
			"trace_id", logger.TraceIDFromContext(c.Request().Context()),
			"status", status,
			"error", err,
		)
	}

	return c.JSON(status, ResponseError{Message: err.Error()})
}
