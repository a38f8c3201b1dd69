package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/dtos"
	"github.com/nexmeet/backend/internal/middlewares"
	"github.com/nexmeet/backend/internal/models"
	"github.com/nexmeet/backend/internal/services"
)

// storageTimeout bounds every storage-backed operation launched from a
// request.
const storageTimeout = 5 * time.Second

type MeetingHandler struct {
	meetingService   *services.MeetingService
	admissionService *services.AdmissionService
}

func NewMeetingHandler(meetingService *services.MeetingService, admissionService *services.AdmissionService) *MeetingHandler {
	return &MeetingHandler{
		meetingService:   meetingService,
		admissionService: admissionService,
	}
}

// Create handles POST /api/meeting.
func (h *MeetingHandler) Create(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	meeting, err := h.meetingService.Create(ctx, req.Title, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dtos.CreateMeetingResponse{
		Code:    meeting.Code,
		Title:   meeting.Title,
		Status:  meeting.Status,
		Message: "Meeting created",
	})
}

// Get handles GET /api/meeting/:code.
func (h *MeetingHandler) Get(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	meeting, isHost, err := h.meetingService.Get(ctx, c.Param("code"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.GetMeetingResponse{
		Code:        meeting.Code,
		Title:       meeting.Title,
		Status:      meeting.Status,
		MediaRoomID: meeting.MediaRoomID,
		IsHost:      isHost,
	})
}

// List handles GET /api/meeting/all: the caller's own meetings, newest
// first.
func (h *MeetingHandler) List(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	meetings, err := h.meetingService.ListByHost(ctx, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dtos.MeetingListItem, 0, len(meetings))
	for _, m := range meetings {
		items = append(items, dtos.MeetingListItem{
			ID:          m.ID,
			Code:        m.Code,
			Title:       m.Title,
			Status:      m.Status,
			MediaRoomID: m.MediaRoomID,
			StartTime:   m.StartTime,
			EndTime:     m.EndTime,
			CreatedAt:   m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"meetings": items})
}

// Join handles POST /api/meeting/:code (ask to join).
func (h *MeetingHandler) Join(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	resp, err := h.admissionService.RequestJoin(ctx, c.Param("code"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Accept handles POST /api/meeting/:code/accept.
func (h *MeetingHandler) Accept(c *gin.Context) {
	h.decide(c, h.admissionService.Accept)
}

// Reject handles POST /api/meeting/:code/reject.
func (h *MeetingHandler) Reject(c *gin.Context) {
	h.decide(c, h.admissionService.Reject)
}

// Leave handles POST /api/meeting/:code/leave.
func (h *MeetingHandler) Leave(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	if err := h.admissionService.Leave(ctx, c.Param("code"), caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant left the meeting"})
}

// End handles POST /api/meeting/:code/end.
func (h *MeetingHandler) End(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	meeting, err := h.meetingService.End(ctx, c.Param("code"), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.CreateMeetingResponse{
		Code:    meeting.Code,
		Title:   meeting.Title,
		Status:  meeting.Status,
		Message: "Meeting ended",
	})
}

// Kick handles POST /api/meeting/:code/kick/:participantId.
func (h *MeetingHandler) Kick(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	if err := h.admissionService.Kick(ctx, c.Param("code"), caller, participantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant kicked from the meeting"})
}

// Delete handles DELETE /api/meeting/:id (soft delete).
func (h *MeetingHandler) Delete(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	if err := h.meetingService.Delete(ctx, meetingID, caller); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type decisionFunc func(ctx context.Context, code string, caller services.Identity, participantID uuid.UUID) (*models.Participant, error)

func (h *MeetingHandler) decide(c *gin.Context, decide decisionFunc) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.AdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	participant, err := decide(ctx, c.Param("code"), caller, participantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.AdmissionResponse{
		Code:          c.Param("code"),
		Status:        participant.Status,
		ParticipantID: participant.ID,
	})
}

func (h *MeetingHandler) opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storageTimeout)
}
