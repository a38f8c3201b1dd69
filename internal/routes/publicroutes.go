package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nexmeet/backend/internal/handlers"
	"github.com/nexmeet/backend/internal/middlewares"
)

func RegisterPublicEndpoints(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
	jwtSecret string,
) {
	router.GET("/healthz", healthHandler.Check)

	public := router.Group("/api")

	public.POST("/auth/register", authHandler.Register)
	public.POST("/auth/login", authHandler.Login)
	public.POST("/auth/refresh", authHandler.Refresh)

	// WebSocket subscriptions authenticate via query token because
	// browsers cannot set headers on upgrade requests.
	wsAuth := middlewares.WebSocketAuthMiddleware(jwtSecret)
	public.GET("/ws", wsAuth, webSocketHandler.Subscribe)
}
