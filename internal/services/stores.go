package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/models"
)

// Identity is the authenticated caller handed to the engine by the
// identity layer. Authorization decisions compare against it at call
// time; nothing about being a host is cached across calls.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// MeetingStore is the storage contract for meetings. Implementations
// must exclude soft-deleted rows from lookups and provide atomic
// read-modify-write per row (End is a compare-and-set).
type MeetingStore interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByCode(ctx context.Context, code string) (*models.Meeting, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Meeting, error)
	End(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SetDeleted(ctx context.Context, id uuid.UUID) error
}

// ParticipantStore is the storage contract for participants.
// MarkDecided is the compare-and-set that serializes concurrent
// accept/reject on one row.
type ParticipantStore interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	FindLive(ctx context.Context, meetingID, userID uuid.UUID) (*models.Participant, error)
	MarkDecided(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, at time.Time) (bool, error)
	SetLeftAt(ctx context.Context, id uuid.UUID, at time.Time) error
	SweepLeftAt(ctx context.Context, meetingID uuid.UUID, at time.Time) (int64, error)
}

// UserStore resolves user records for authorization and display data.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
}
