package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/codes"
	"github.com/nexmeet/backend/internal/media"
	"github.com/nexmeet/backend/internal/models"
	"github.com/nexmeet/backend/internal/repositories"
	ws "github.com/nexmeet/backend/internal/websocket"
)

const defaultMeetingTitle = "Instant Meeting"

// createCodeAttempts bounds the retry loop on meeting-code collisions.
// With a 26-letter alphabet and 10 characters, even one collision is
// vanishingly rare; the bound exists so a broken unique index cannot
// loop forever.
const createCodeAttempts = 5

// MeetingService owns meeting records and their lifecycle:
// ACTIVE -> ENDED, plus soft deletion. All durable state lives in the
// stores; the service holds no mutable state of its own.
type MeetingService struct {
	meetings     MeetingStore
	participants ParticipantStore
	users        UserStore
	rooms        media.RoomService
	notifier     ws.Notifier
}

func NewMeetingService(
	meetings MeetingStore,
	participants ParticipantStore,
	users UserStore,
	rooms media.RoomService,
	notifier ws.Notifier,
) *MeetingService {
	return &MeetingService{
		meetings:     meetings,
		participants: participants,
		users:        users,
		rooms:        rooms,
		notifier:     notifier,
	}
}

// Create provisions a meeting for the caller. Media room creation is
// best-effort: if the media node is down the meeting is still created,
// just without a room id.
func (s *MeetingService) Create(ctx context.Context, title string, caller Identity) (*models.Meeting, error) {
	host, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("resolve host: %w", apperrors.ErrUnauthorized)
		}
		return nil, apperrors.Dependency("storage", err)
	}

	if title == "" {
		title = defaultMeetingTitle
	}

	var mediaRoomID *string
	if roomID, err := s.rooms.CreateRoom(ctx); err != nil {
		log.Warn().Err(err).Msg("media room provisioning failed, creating meeting without room")
	} else {
		mediaRoomID = &roomID
	}

	var meeting *models.Meeting
	for attempt := 0; attempt < createCodeAttempts; attempt++ {
		meeting = &models.Meeting{
			ID:          uuid.New(),
			Code:        codes.Generate(),
			Title:       title,
			HostID:      host.ID,
			MediaRoomID: mediaRoomID,
			Status:      models.MeetingStatusActive,
			StartTime:   time.Now(),
		}

		err = s.meetings.Create(ctx, meeting)
		if err == nil {
			break
		}
		if repositories.IsUniqueViolation(err) {
			log.Info().Str("code", meeting.Code).Msg("meeting code collision, regenerating")
			continue
		}
		return nil, apperrors.Dependency("storage", err)
	}
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}

	s.notifier.Broadcast(ws.TopicMeetings, ws.Event{
		"type":        ws.EventMeetingCreated,
		"meetingCode": meeting.Code,
		"mediaRoomId": meeting.MediaRoomID,
		"hostEmail":   host.Email,
		"hostName":    host.Name,
	})

	log.Info().
		Str("code", meeting.Code).
		Str("host_id", host.ID.String()).
		Bool("media_room", mediaRoomID != nil).
		Msg("meeting created")

	return meeting, nil
}

// Get resolves a meeting by code and reports whether the caller is its
// host.
func (s *MeetingService) Get(ctx context.Context, code string, caller Identity) (*models.Meeting, bool, error) {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return nil, false, lookupErr(err)
	}
	return meeting, meeting.IsHost(caller.UserID), nil
}

// ListByHost returns the caller's meetings, newest first.
func (s *MeetingService) ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Meeting, error) {
	meetings, err := s.meetings.ListByHost(ctx, hostID)
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}
	return meetings, nil
}

// End transitions the meeting to ENDED, sweeps every live participant's
// leftAt, closes the media room (best-effort) and broadcasts
// MEETING_ENDED. Host-only; one-way.
func (s *MeetingService) End(ctx context.Context, code string, caller Identity) (*models.Meeting, error) {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return nil, lookupErr(err)
	}
	if !meeting.IsHost(caller.UserID) {
		return nil, apperrors.ErrPermissionDenied
	}
	if meeting.Status != models.MeetingStatusActive {
		return nil, fmt.Errorf("meeting already ended: %w", apperrors.ErrInvalidState)
	}

	now := time.Now()

	// Sweep before flipping status so a retry after a partial failure
	// redoes both steps; the sweep is idempotent.
	swept, err := s.participants.SweepLeftAt(ctx, meeting.ID, now)
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}

	ended, err := s.meetings.End(ctx, meeting.ID, now)
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}
	if !ended {
		// Lost a race against a concurrent end call.
		return nil, fmt.Errorf("meeting already ended: %w", apperrors.ErrInvalidState)
	}

	meeting.Status = models.MeetingStatusEnded
	meeting.EndTime = &now

	if meeting.MediaRoomID != nil {
		if err := s.rooms.CloseRoom(ctx, *meeting.MediaRoomID); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("media room close failed")
		}
	}

	s.notifier.Broadcast(ws.MeetingTopic(code), ws.Event{
		"type":        ws.EventMeetingEnded,
		"meetingCode": code,
	})

	log.Info().Str("code", code).Int64("participants_swept", swept).Msg("meeting ended")

	return meeting, nil
}

// Delete soft-deletes a meeting. Participants and any exported
// artifacts stay addressable by id; the meeting just disappears from
// code and host lookups.
func (s *MeetingService) Delete(ctx context.Context, meetingID uuid.UUID, caller Identity) error {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return lookupErr(err)
	}
	if !meeting.IsHost(caller.UserID) {
		return apperrors.ErrPermissionDenied
	}

	if err := s.meetings.SetDeleted(ctx, meeting.ID); err != nil {
		return apperrors.Dependency("storage", err)
	}

	log.Info().Str("code", meeting.Code).Msg("meeting soft-deleted")
	return nil
}
