package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Ping(c *gin.Context) {
	message := os.Getenv("PING_MESSAGE")
	if message == "" {
		message = "ping"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Health reports liveness plus blob store reachability.
func (h *Handler) Health(c *gin.Context) {
	if err := h.blobs.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
