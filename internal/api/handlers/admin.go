package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
	"github.com/Moderated-Gallery/Gallery-Service/internal/services"
	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/gin-gonic/gin"
)

// defaultRejectionReason is substituted at this boundary when the admin
// omits a reason; the store itself keeps whatever it is given.
const defaultRejectionReason = "Content policy violation"

// ApproveImage marks an image approved. Approving an already moderated
// record succeeds and re-stamps the decision metadata.
func (h *Handler) ApproveImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	var req models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ApprovedBy == "" {
		respondError(c, http.StatusBadRequest, "approvedBy is required")
		return
	}

	image, err := h.store.Approve(id, req.ApprovedBy)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Image not found")
			return
		}
		respondError(c, http.StatusBadRequest, "approvedBy is required")
		return
	}

	h.publishEvent(services.SubjectImageApproved, services.ImageEvent{
		ImageID:  image.ID,
		Action:   "approved",
		Actor:    req.ApprovedBy,
		Filename: image.Filename,
	})

	respondOK(c, http.StatusOK, image)
}

// RejectImage marks an image rejected, substituting a default reason when
// none is supplied.
func (h *Handler) RejectImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image ID")
		return
	}

	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RejectedBy == "" {
		respondError(c, http.StatusBadRequest, "rejectedBy is required")
		return
	}
	if req.RejectionReason == "" {
		req.RejectionReason = defaultRejectionReason
	}

	image, err := h.store.Reject(id, req.RejectedBy, req.RejectionReason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Image not found")
			return
		}
		respondError(c, http.StatusBadRequest, "rejectedBy is required")
		return
	}

	h.publishEvent(services.SubjectImageRejected, services.ImageEvent{
		ImageID:  image.ID,
		Action:   "rejected",
		Actor:    req.RejectedBy,
		Reason:   req.RejectionReason,
		Filename: image.Filename,
	})

	respondOK(c, http.StatusOK, image)
}

// DeleteImage removes the record and its stored binary outright. Deletion is
// unconditional — any status, no ownership check, no soft delete.
func (h *Handler) DeleteImage(c *gin.Context) {
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

	if !h.store.Delete(id) {
		respondError(c, http.StatusNotFound, "Image not found")
		return
	}

	// Blob cleanup is best-effort; the record is already gone
	if err := h.blobs.Remove(image.Filename); err != nil {
		log.Printf("[Delete] warning: failed to delete file %s: %v", image.Filename, err)
	}
	if err := h.blobs.Remove("previews/" + image.Filename); err != nil {
		log.Printf("[Delete] warning: failed to delete preview %s: %v", image.Filename, err)
	}

	h.publishEvent(services.SubjectImageDeleted, services.ImageEvent{
		ImageID:  id,
		Action:   "deleted",
		Filename: image.Filename,
	})

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
