package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/services"
	"github.com/nexmeet/backend/internal/utils"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"

	// AccessTokenCookie is the HttpOnly cookie carrying the access
	// token for browser clients; API clients use a bearer header.
	AccessTokenCookie = "accessToken"
)

// AuthMiddleware validates the caller's access token (cookie first,
// then Authorization header) and stores the resolved identity on the
// request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
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

// CallerIdentity returns the identity the auth middleware resolved for
// this request.
func CallerIdentity(c *gin.Context) (services.Identity, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return services.Identity{}, false
	}
	email, ok := c.Get(ctxUserEmail)
	if !ok {
		return services.Identity{}, false
	}

	userID, ok := id.(uuid.UUID)
	if !ok {
		return services.Identity{}, false
	}
	userEmail, ok := email.(string)
	if !ok {
		return services.Identity{}, false
	}

	return services.Identity{UserID: userID, Email: userEmail}, true
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
