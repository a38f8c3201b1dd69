package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nexmeet/backend/internal/handlers"
	"github.com/nexmeet/backend/internal/middlewares"
)

func RegisterProtectedEndpoints(
	router *gin.Engine,
	meetingHandler *handlers.MeetingHandler,
	jwtSecret string,
) {
	protected := router.Group("/api")
	protected.Use(middlewares.AuthMiddleware(jwtSecret))

	meeting := protected.Group("/meeting")

	meeting.POST("", meetingHandler.Create)
	meeting.GET("/all", meetingHandler.List)
	meeting.GET("/:code", meetingHandler.Get)
	meeting.POST("/:code", meetingHandler.Join)
	meeting.POST("/:code/accept", meetingHandler.Accept)
	meeting.POST("/:code/reject", meetingHandler.Reject)
	meeting.POST("/:code/leave", meetingHandler.Leave)
	meeting.POST("/:code/end", meetingHandler.End)
	meeting.POST("/:code/kick/:participantId", meetingHandler.Kick)
	meeting.DELETE("/:id", meetingHandler.Delete)
}
