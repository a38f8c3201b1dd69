package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/dtos"
	"github.com/nexmeet/backend/internal/media"
	"github.com/nexmeet/backend/internal/models"
	ws "github.com/nexmeet/backend/internal/websocket"
)

// AdmissionService gates entry into meetings. Per participant the
// state machine is WAITING --accept--> ACCEPTED, WAITING --reject-->
// REJECTED; leave and kick terminate an admitted record by stamping
// leftAt. Every media-room call here is a side effect that must not
// block the local transition.
type AdmissionService struct {
	meetings     MeetingStore
	participants ParticipantStore
	users        UserStore
	rooms        media.RoomService
	notifier     ws.Notifier
}

func NewAdmissionService(
	meetings MeetingStore,
	participants ParticipantStore,
	users UserStore,
	rooms media.RoomService,
	notifier ws.Notifier,
) *AdmissionService {
	return &AdmissionService{
		meetings:     meetings,
		participants: participants,
		users:        users,
		rooms:        rooms,
		notifier:     notifier,
	}
}

// RequestJoin handles a user asking to enter a meeting by code. The
// host short-circuits to ACCEPTED without a participant record; anyone
// else gets (or keeps) a WAITING record and the host is notified.
func (s *AdmissionService) RequestJoin(ctx context.Context, code string, caller Identity) (*dtos.JoinMeetingResponse, error) {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return nil, lookupErr(err)
	}
	if meeting.Status != models.MeetingStatusActive {
		return nil, fmt.Errorf("meeting is not active: %w", apperrors.ErrInvalidState)
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("resolve caller: %w", apperrors.ErrUnauthorized)
		}
		return nil, apperrors.Dependency("storage", err)
	}

	if meeting.IsHost(caller.UserID) {
		return s.hostJoin(ctx, meeting, user), nil
	}

	// One live record per (user, meeting): a repeated request returns
	// the existing record instead of stacking a second WAITING row.
	existing, err := s.participants.FindLive(ctx, meeting.ID, user.ID)
	if err == nil {
		switch existing.Status {
		case models.ParticipantStatusWaiting:
			// Re-surface the pending request to the host.
			s.notifyHostJoinRequest(ctx, meeting, existing, user)
			return joinResponse(meeting, existing), nil
		case models.ParticipantStatusAccepted:
			return joinResponse(meeting, existing), nil
		case models.ParticipantStatusRejected:
			return nil, fmt.Errorf("join request was declined: %w", apperrors.ErrPermissionDenied)
		}
	} else if !isNotFound(err) {
		return nil, apperrors.Dependency("storage", err)
	}

	participant := &models.Participant{
		ID:        uuid.New(),
		MeetingID: meeting.ID,
		UserID:    user.ID,
		Status:    models.ParticipantStatusWaiting,
		JoinedAt:  time.Now(),
	}
	if err := s.participants.Create(ctx, participant); err != nil {
		return nil, apperrors.Dependency("storage", err)
	}

	s.notifyHostJoinRequest(ctx, meeting, participant, user)

	log.Info().
		Str("code", code).
		Str("participant_id", participant.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("join requested")

	return joinResponse(meeting, participant), nil
}

// Accept admits a WAITING participant. Host-only. Accepting an already
// accepted participant is a no-op returning the current record.
func (s *AdmissionService) Accept(ctx context.Context, code string, caller Identity, participantID uuid.UUID) (*models.Participant, error) {
	meeting, participant, err := s.decisionTarget(ctx, code, caller, participantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	decided, err := s.participants.MarkDecided(ctx, participant.ID, models.ParticipantStatusAccepted, now)
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}
	if !decided {
		// Someone else resolved this row first; report the settled
		// outcome instead of a corrupted in-between.
		return s.settledOutcome(ctx, participant.ID, models.ParticipantStatusAccepted)
	}

	participant.Status = models.ParticipantStatusAccepted
	participant.JoinedAt = now

	user, err := s.users.GetByID(ctx, participant.UserID)
	if err != nil {
		// The admission is committed; only the notifications lack
		// display data. Degraded, not fatal.
		log.Warn().Err(err).Str("participant_id", participant.ID.String()).
			Msg("participant user lookup failed, skipping notifications")
		return participant, nil
	}

	if meeting.MediaRoomID != nil {
		if err := s.rooms.JoinRoom(ctx, *meeting.MediaRoomID, user.ID.String(), user.Name); err != nil {
			log.Warn().Err(err).Str("code", code).Str("user_id", user.ID.String()).
				Msg("media room join failed")
		}
	}

	s.notifier.Notify(user.Email, ws.Event{
		"type":        ws.EventJoinAccepted,
		"meetingCode": code,
		"mediaRoomId": meeting.MediaRoomID,
	})
	s.notifier.Broadcast(ws.MeetingTopic(code), ws.Event{
		"type":            ws.EventParticipantJoined,
		"participantId":   participant.ID.String(),
		"userId":          user.ID.String(),
		"name":            user.Name,
		"initials":        user.Initials(),
		"isMuted":         false,
		"isCameraOff":     false,
		"isScreenSharing": false,
		"isPinned":        false,
	})

	log.Info().Str("code", code).Str("participant_id", participant.ID.String()).Msg("participant accepted")

	return participant, nil
}

// Reject declines a WAITING participant. Host-only. The media room is
// never touched.
func (s *AdmissionService) Reject(ctx context.Context, code string, caller Identity, participantID uuid.UUID) (*models.Participant, error) {
	meeting, participant, err := s.decisionTarget(ctx, code, caller, participantID)
	if err != nil {
		return nil, err
	}

	decided, err := s.participants.MarkDecided(ctx, participant.ID, models.ParticipantStatusRejected, time.Now())
	if err != nil {
		return nil, apperrors.Dependency("storage", err)
	}
	if !decided {
		return s.settledOutcome(ctx, participant.ID, models.ParticipantStatusRejected)
	}

	participant.Status = models.ParticipantStatusRejected

	user, err := s.users.GetByID(ctx, participant.UserID)
	if err != nil {
		log.Warn().Err(err).Str("participant_id", participant.ID.String()).
			Msg("participant user lookup failed, skipping notification")
		return participant, nil
	}

	s.notifier.Notify(user.Email, ws.Event{
		"type":        ws.EventJoinRejected,
		"meetingCode": meeting.Code,
	})

	log.Info().Str("code", code).Str("participant_id", participant.ID.String()).Msg("participant rejected")

	return participant, nil
}

// Leave terminates the caller's own live participant record.
func (s *AdmissionService) Leave(ctx context.Context, code string, callerUserID uuid.UUID) error {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return lookupErr(err)
	}

	participant, err := s.participants.FindLive(ctx, meeting.ID, callerUserID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("not a participant of this meeting: %w", apperrors.ErrNotFound)
		}
		return apperrors.Dependency("storage", err)
	}

	if err := s.participants.SetLeftAt(ctx, participant.ID, time.Now()); err != nil {
		return apperrors.Dependency("storage", err)
	}

	if meeting.MediaRoomID != nil {
		if err := s.rooms.LeaveRoom(ctx, *meeting.MediaRoomID, callerUserID.String()); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("media room leave failed")
		}
	}

	s.notifier.Broadcast(ws.MeetingTopic(code), ws.Event{
		"type":          ws.EventParticipantLeft,
		"participantId": participant.ID.String(),
		"userId":        callerUserID.String(),
	})

	log.Info().Str("code", code).Str("participant_id", participant.ID.String()).Msg("participant left")

	return nil
}

// Kick removes a participant by host decision: leftAt is stamped, the
// room is told to drop them, the meeting hears PARTICIPANT_KICKED and
// the target gets a direct YOU_WERE_KICKED notice.
func (s *AdmissionService) Kick(ctx context.Context, code string, caller Identity, participantID uuid.UUID) error {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return lookupErr(err)
	}
	if !meeting.IsHost(caller.UserID) {
		return apperrors.ErrPermissionDenied
	}
	if meeting.Status != models.MeetingStatusActive {
		return fmt.Errorf("meeting is not active: %w", apperrors.ErrInvalidState)
	}

	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return lookupErr(err)
	}
	if participant.MeetingID != meeting.ID {
		return fmt.Errorf("participant does not belong to this meeting: %w", apperrors.ErrNotFound)
	}
	if !participant.Live() {
		return fmt.Errorf("participant already left: %w", apperrors.ErrInvalidState)
	}

	if err := s.participants.SetLeftAt(ctx, participant.ID, time.Now()); err != nil {
		return apperrors.Dependency("storage", err)
	}

	if meeting.MediaRoomID != nil {
		if err := s.rooms.LeaveRoom(ctx, *meeting.MediaRoomID, participant.UserID.String()); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("media room leave failed")
		}
	}

	s.notifier.Broadcast(ws.MeetingTopic(code), ws.Event{
		"type":          ws.EventParticipantKicked,
		"participantId": participant.ID.String(),
		"userId":        participant.UserID.String(),
	})

	if user, err := s.users.GetByID(ctx, participant.UserID); err == nil {
		s.notifier.Notify(user.Email, ws.Event{
			"type":        ws.EventYouWereKicked,
			"meetingCode": code,
		})
	} else {
		log.Warn().Err(err).Str("participant_id", participant.ID.String()).
			Msg("kicked user lookup failed, skipping direct notice")
	}

	log.Info().Str("code", code).Str("participant_id", participant.ID.String()).Msg("participant kicked")

	return nil
}

// hostJoin admits the host without a participant record: register them
// in the media room (best-effort) and announce HOST_JOINED.
func (s *AdmissionService) hostJoin(ctx context.Context, meeting *models.Meeting, host *models.User) *dtos.JoinMeetingResponse {
	if meeting.MediaRoomID != nil {
		if err := s.rooms.JoinRoom(ctx, *meeting.MediaRoomID, host.ID.String(), host.Name); err != nil {
			// Media trouble never blocks the host's own meeting.
			log.Warn().Err(err).Str("code", meeting.Code).Msg("host media room join failed")
		}
	}

	s.notifier.Broadcast(ws.MeetingTopic(meeting.Code), ws.Event{
		"type":   ws.EventHostJoined,
		"userId": host.ID.String(),
		"name":   host.Name,
	})

	return &dtos.JoinMeetingResponse{
		Code:              meeting.Code,
		MeetingStatus:     meeting.Status,
		ParticipantStatus: models.ParticipantStatusAccepted,
	}
}

// decisionTarget validates everything accept and reject share: the
// meeting exists and is active, the caller is its host, and the
// participant exists, belongs to this meeting and has not left.
func (s *AdmissionService) decisionTarget(ctx context.Context, code string, caller Identity, participantID uuid.UUID) (*models.Meeting, *models.Participant, error) {
	meeting, err := s.meetings.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, lookupErr(err)
	}
	if !meeting.IsHost(caller.UserID) {
		return nil, nil, apperrors.ErrPermissionDenied
	}
	if meeting.Status != models.MeetingStatusActive {
		return nil, nil, fmt.Errorf("meeting is not active: %w", apperrors.ErrInvalidState)
	}

	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, nil, lookupErr(err)
	}
	if participant.MeetingID != meeting.ID {
		return nil, nil, fmt.Errorf("participant does not belong to this meeting: %w", apperrors.ErrNotFound)
	}
	if !participant.Live() {
		return nil, nil, fmt.Errorf("participant already left: %w", apperrors.ErrInvalidState)
	}

	return meeting, participant, nil
}

// settledOutcome re-reads a participant after a lost compare-and-set.
// If the row already carries the status the caller wanted, the call is
// an idempotent success; any other terminal status is a conflict.
func (s *AdmissionService) settledOutcome(ctx context.Context, participantID uuid.UUID, wanted models.ParticipantStatus) (*models.Participant, error) {
	current, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, lookupErr(err)
	}
	if current.Status == wanted {
		return current, nil
	}
	return nil, fmt.Errorf("participant already %s: %w", current.Status, apperrors.ErrInvalidState)
}

func (s *AdmissionService) notifyHostJoinRequest(ctx context.Context, meeting *models.Meeting, participant *models.Participant, user *models.User) {
	host, err := s.users.GetByID(ctx, meeting.HostID)
	if err != nil {
		log.Warn().Err(err).Str("code", meeting.Code).Msg("host lookup failed, join request not delivered")
		return
	}

	s.notifier.Notify(host.Email, ws.Event{
		"type":          ws.EventJoinRequest,
		"meetingCode":   meeting.Code,
		"participantId": participant.ID.String(),
		"userName":      user.Name,
		"userEmail":     user.Email,
	})
}

func joinResponse(meeting *models.Meeting, p *models.Participant) *dtos.JoinMeetingResponse {
	id := p.ID
	return &dtos.JoinMeetingResponse{
		Code:              meeting.Code,
		MeetingStatus:     meeting.Status,
		ParticipantStatus: p.Status,
		ParticipantID:     &id,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// lookupErr keeps not-found as-is and classifies any other read
// failure as a fatal storage dependency error.
func lookupErr(err error) error {
	if isNotFound(err) {
		return err
	}
	return apperrors.Dependency("storage", err)
}
