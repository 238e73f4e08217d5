package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/services"
)

// WebSocketHandler upgrades the connection and attaches the client to
// the hub. Identity comes from the auth middleware, which also accepts
// the token as a query parameter for browser websocket clients.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		userType, _ := c.Get("userType")
		typeStr, _ := userType.(string)
		services.HandleWebSocket(hub, c.Writer, c.Request, userID, typeStr)
	}
}
