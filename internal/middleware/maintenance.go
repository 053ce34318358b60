package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/services"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
)

// MaintenanceMiddleware rejects public writes while maintenance mode is on.
// Reads stay available so the directory remains browsable; admin routes are
// never mounted behind this middleware.
func MaintenanceMiddleware(settings services.SettingsServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := settings.Get(c.Request.Context())
		if err != nil {
			// Settings being unreadable must not take registration down
			logger.LogError(err, "failed to load settings for maintenance check")
			c.Next()
			return
		}

		if current.MaintenanceMode {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": current.MaintenanceMessage,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
