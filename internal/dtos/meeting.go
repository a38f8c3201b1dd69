package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/models"
)

type CreateMeetingRequest struct {
	Title string `json:"title" binding:"omitempty,max=200"`
}

type CreateMeetingResponse struct {
	Code    string               `json:"code"`
	Title   string               `json:"title"`
	Status  models.MeetingStatus `json:"status"`
	Message string               `json:"message"`
}

type GetMeetingResponse struct {
	Code        string               `json:"code"`
	Title       string               `json:"title"`
	Status      models.MeetingStatus `json:"status"`
	MediaRoomID *string              `json:"mediaRoomId"`
	IsHost      bool                 `json:"isHost"`
}

// JoinMeetingResponse is returned from ask-to-join. ParticipantID is
// nil for the host, who is admitted without a participant record.
type JoinMeetingResponse struct {
	Code              string                   `json:"code"`
	MeetingStatus     models.MeetingStatus     `json:"meetingStatus"`
	ParticipantStatus models.ParticipantStatus `json:"participantStatus"`
	ParticipantID     *uuid.UUID               `json:"participantId,omitempty"`
}

type AdmissionRequest struct {
	ParticipantID string `json:"participantId" binding:"required,uuid"`
}

type AdmissionResponse struct {
	Code          string                   `json:"code"`
	Status        models.ParticipantStatus `json:"status"`
	ParticipantID uuid.UUID                `json:"participantId"`
}

type MeetingListItem struct {
	ID          uuid.UUID            `json:"id"`
	Code        string               `json:"code"`
	Title       string               `json:"title"`
	Status      models.MeetingStatus `json:"status"`
	MediaRoomID *string              `json:"mediaRoomId"`
	StartTime   time.Time            `json:"startTime"`
	EndTime     *time.Time           `json:"endTime"`
	CreatedAt   time.Time            `json:"createdAt"`
}
