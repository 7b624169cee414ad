package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJobSecret guards the trigger endpoints with a shared secret: the
// platform cron sends it in the X-Job-Secret header. An empty configured
// secret disables the check (local development).
func RequireJobSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("X-Job-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid job secret"})
			return
		}

		c.Next()
	}
}
