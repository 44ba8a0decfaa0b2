package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookAuthMiddleware checks the shared secret the voice platform sends on
// every tool call and event delivery. An empty configured secret disables
// the check (local development).
func WebhookAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader("x-vapi-secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			zap.L().Warn("Webhook delivery with bad secret", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}
