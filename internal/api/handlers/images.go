package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Moderated-Gallery/Gallery-Service/internal/api/middleware"
	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/gin-gonic/gin"
)

// ListImages returns all images visible to the caller, optionally filtered
// by a case-insensitive search over title and tags. Anonymous callers only
// ever see approved records.
func (h *Handler) ListImages(c *gin.Context) {
	images := h.store.List()
	if !middleware.IsAdmin(c) {
		images = filterByStatus(images, models.StatusApproved)
	}
	if search := c.Query("search"); search != "" {
		images = filterBySearch(images, search)
	}
	respondOK(c, http.StatusOK, images)
}

// GetImagesByStatus returns images with the requested status. The search
// query composes with the status filter. For anonymous callers the result is
// additionally narrowed to approved records, so asking for pending or
// rejected yields an empty list.
func (h *Handler) GetImagesByStatus(c *gin.Context) {
	status := models.ImageStatus(c.Param("status"))

	images, err := h.store.ListByStatus(status)
	if err != nil {
		if errors.Is(err, store.ErrInvalidStatus) {
			respondError(c, http.StatusBadRequest, "Invalid status")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch images")
		return
	}

	if !middleware.IsAdmin(c) {
		images = filterByStatus(images, models.StatusApproved)
	}
	if search := c.Query("search"); search != "" {
		images = filterBySearch(images, search)
	}
	respondOK(c, http.StatusOK, images)
}

// GetImage returns a single image by id.
func (h *Handler) GetImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	image, ok := h.store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "Image not found")
		return
	}
	respondOK(c, http.StatusOK, image)
}

// ServeUpload streams a stored binary (or its preview, under previews/)
// from the blob store. The record's url field points here.
func (h *Handler) ServeUpload(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("filepath"), "/")
	if objectName == "" {
		respondError(c, http.StatusBadRequest, "Filename is required")
		return
	}

	rc, err := h.blobs.Open(objectName)
	if err != nil {
		respondError(c, http.StatusNotFound, "File not found")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentTypeForExt(filepath.Ext(objectName)))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func filterByStatus(images []models.Image, status models.ImageStatus) []models.Image {
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		if img.Status == status {
			out = append(out, img)
		}
	}
	return out
}

// filterBySearch keeps images whose title or any tag contains the query,
// case-insensitively.
func filterBySearch(images []models.Image, query string) []models.Image {
	q := strings.ToLower(query)
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		if matchesSearch(img, q) {
			out = append(out, img)
		}
	}
	return out
}

func matchesSearch(img models.Image, q string) bool {
	if strings.Contains(strings.ToLower(img.Title), q) {
		return true
	}
	for _, tag := range img.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
