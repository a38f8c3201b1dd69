package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexmeet/backend/internal/utils"
)

// WebSocketAuthMiddleware authenticates WebSocket subscription
// requests. Browsers cannot set headers on WebSocket upgrades, so the
// access token travels as a query parameter instead. Must run before
// the upgrade.
func WebSocketAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			// Cookie auth still works for same-origin clients.
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := utils.ParseAccessToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Next()
	}
}
