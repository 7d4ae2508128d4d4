package handlers

import (
	"log"
	"time"

	"github.com/Moderated-Gallery/Gallery-Service/internal/configuration"
	"github.com/Moderated-Gallery/Gallery-Service/internal/services"
	"github.com/Moderated-Gallery/Gallery-Service/internal/storage"
	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/gin-gonic/gin"
)

// Handler bundles the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg    *configuration.Config
	store  *store.ImageStore
	blobs  storage.Storage
	events *services.EventService // nil when NATS is not configured
}

func New(cfg *configuration.Config, imageStore *store.ImageStore, blobs storage.Storage, events *services.EventService) *Handler {
	return &Handler{
		cfg:    cfg,
		store:  imageStore,
		blobs:  blobs,
		events: events,
	}
}

// publishEvent publishes a lifecycle event when NATS is configured.
// Event delivery is best-effort and never fails the request.
func (h *Handler) publishEvent(subject string, event services.ImageEvent) {
	if h.events == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := h.events.Publish(subject, event); err != nil {
		log.Printf("[Events] failed to publish %s for image %d: %v", subject, event.ImageID, err)
	}
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func currentDate() string {
	return time.Now().UTC().Format("2006-01-02")
}
