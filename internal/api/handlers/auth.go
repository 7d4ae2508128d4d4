package handlers

import (
	"net/http"

	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
	"github.com/gin-gonic/gin"
)

// Login checks the static admin credentials and returns the opaque admin
// token. This is a preserved demo contract — there is no session state and
// the token never expires or varies.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	if req.Username != h.cfg.Admin.Username || req.Password != h.cfg.Admin.Password {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"token": h.cfg.Admin.Token})
}
