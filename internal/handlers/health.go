package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/services"
)

// Health reports liveness and the realtime channel population.
func Health(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"wsClients": hub.GetConnectedClients(),
		})
	}
}
