package api

import (
	"github.com/Moderated-Gallery/Gallery-Service/internal/api/handlers"
	"github.com/Moderated-Gallery/Gallery-Service/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, adminToken string) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	// Serve uploaded binaries and previews
	r.GET("/uploads/*filepath", h.ServeUpload)

	api := r.Group("/api")
	{
		api.GET("/ping", h.Ping)
		api.GET("/health", h.Health)

		// Auth
		api.POST("/auth/login", h.Login)

		// Public image routes — admin token widens visibility, never required
		images := api.Group("/images", middleware.DetectAdmin(adminToken))
		{
			images.GET("", h.ListImages)                       // list (optional ?search=)
			images.GET("/status/:status", h.GetImagesByStatus) // filter by moderation status
			images.GET("/:id", h.GetImage)                     // single image
		}

		// Upload routes (no auth required for users to upload)
		api.POST("/upload", h.UploadImage)
		api.POST("/upload/multiple", h.UploadMultipleImages)

		// Admin moderation routes (require the admin token)
		admin := api.Group("/admin", middleware.RequireAdmin(adminToken))
		{
			admin.POST("/images/:id/approve", h.ApproveImage)
			admin.POST("/images/:id/reject", h.RejectImage)
			admin.DELETE("/images/:id", h.DeleteImage)
		}
	}
}
