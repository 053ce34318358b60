package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/pkg/jwt"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
)

// AdminHeaderName carries the shared admin secret on moderation requests
const AdminHeaderName = "x-admin-key"

// AdminAuthMiddleware guards moderation routes with a shared secret header.
// When the server-side secret was never configured the middleware fails with
// 500 rather than 401: the deployment is broken, not the caller.
func AdminAuthMiddleware(configuredSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configuredSecret == "" {
			logger.Error("admin secret key is not configured",
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
			c.Abort()
			return
		}

		key := c.GetHeader(AdminHeaderName)
		if key == "" || !jwt.TimingSafeCompare(key, configuredSecret) {
			logger.Warn("invalid admin key",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing admin key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
