package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminContextKey = "isAdmin"

// bearerToken extracts the bearer token from the Authorization header,
// returning "" when the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth {
		return ""
	}
	return token
}

// RequireAdmin aborts with 401 unless the request carries the admin token.
func RequireAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != adminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}
		c.Set(adminContextKey, true)
		c.Next()
	}
}

// DetectAdmin flags admin callers without rejecting anonymous ones. Public
// listing handlers use the flag to narrow visibility to approved records.
func DetectAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == adminToken {
			c.Set(adminContextKey, true)
		}
		c.Next()
	}
}

// IsAdmin reports whether the current caller passed the admin token check.
func IsAdmin(c *gin.Context) bool {
	admin, ok := c.Get(adminContextKey)
	if !ok {
		return false
	}
	flag, _ := admin.(bool)
	return flag
}
