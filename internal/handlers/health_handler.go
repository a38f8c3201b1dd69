package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexmeet/backend/internal/media"
)

// HealthHandler reports liveness plus the media node's connectivity
// snapshot. Degraded media is surfaced here, separately from admission
// outcomes.
type HealthHandler struct {
	db    *sql.DB
	media media.HealthReporter
}

func NewHealthHandler(db *sql.DB, mediaHealth media.HealthReporter) *HealthHandler {
	return &HealthHandler{db: db, media: mediaHealth}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	statusText := "ok"

	dbOK := h.db.PingContext(c.Request.Context()) == nil
	if !dbOK {
		status = http.StatusServiceUnavailable
		statusText = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   statusText,
		"database": dbOK,
		"media":    h.media.Health(),
	})
}
