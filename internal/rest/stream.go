package rest

import (
	"net/http"
	"time"

	"myFoodFinder/business/bandit"
	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"
	"myFoodFinder/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

const (
	streamMessageLocation = "location"
	streamMessageDecision = "decision"
)

// StreamMessage is what a client may send over the state stream.
type StreamMessage struct {
	Type     string           `json:"type"`
	Location *domain.Location `json:"location,omitempty"`
	PlaceID  string           `json:"place_id,omitempty"`
	Decision string           `json:"decision,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GET /api/v1/recommendations/stream
//
// Pushes every session state as JSON. Clients may send location updates and
// decisions on the same socket; results arrive as the next pushed state.
func (h *RecommendationHandler) Stream(c echo.Context) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		logger.Debug("websocket upgrade failed", "error", err)
		return nil
	}

	metrics.StreamConnections.Inc()
	defer metrics.StreamConnections.Dec()

	states, unsubscribe := h.service.Subscribe(userID)
	defer unsubscribe()

	traceID := logger.TraceIDFromContext(c.Request().Context())
	done := make(chan struct{})
	go h.readStream(c, conn, userID, done)

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-done:
			return nil

		case state, ok := <-states:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := conn.WriteJSON(state); err != nil {
				logger.Debug("stream write failed", "trace_id", traceID, "error", err)
				return nil
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *RecommendationHandler) readStream(c echo.Context, conn *websocket.Conn, userID uint, done chan<- struct{}) {
	defer close(done)

	ctx := c.Request().Context()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("unexpected websocket close", "error", err)
			}
			return
		}

		switch msg.Type {
		case streamMessageLocation:
			if msg.Location == nil || h.validate.Struct(msg.Location) != nil {
				continue
			}
			// outcome, including in-flight drops, is visible through pushed state
			_, _ = h.service.Recommend(ctx, userID, *msg.Location)

		case streamMessageDecision:
			accepted, err := bandit.AcceptedFromDecision(msg.Decision)
			if err != nil || msg.PlaceID == "" {
				continue
			}
			_, _ = h.service.Decide(ctx, userID, msg.PlaceID, accepted)
		}
	}
}
