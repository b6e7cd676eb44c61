package controller

import (
	"github.com/banglehouse/bangles-backend/internal/middleware"
	ws "github.com/banglehouse/bangles-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
}

func NewRealtimeController(hub *ws.Hub, allowedOrigins []string) *RealtimeController {
	return &RealtimeController{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// CartUpdates streams cart_updated events for the session
// GET /api/v1/cart/ws
func (ctrl *RealtimeController) CartUpdates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	// The session header and cookie set by CartSession must go out with the
	// upgrade response, so they are passed explicitly.
	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, c.Writer.Header())
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	ctrl.hub.Serve(conn, sessionID)
	log.Info("Cart updates stream opened", map[string]interface{}{
		"session_id": sessionID,
	})
}
