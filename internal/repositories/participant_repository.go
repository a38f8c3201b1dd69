package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/models"
)

type ParticipantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	const query = `
	INSERT INTO participants (id, meeting_id, user_id, status, joined_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		p.ID,
		p.MeetingID,
		p.UserID,
		p.Status,
		p.JoinedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	const query = `
	SELECT id, meeting_id, user_id, status, joined_at, left_at, created_at, updated_at
	FROM participants
	WHERE id = $1
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindLive returns the current non-left participant record for a
// (meeting, user) pair. At most one such record should exist.
func (r *ParticipantRepository) FindLive(ctx context.Context, meetingID, userID uuid.UUID) (*models.Participant, error) {
	const query = `
	SELECT id, meeting_id, user_id, status, joined_at, left_at, created_at, updated_at
	FROM participants
	WHERE meeting_id = $1 AND user_id = $2 AND left_at IS NULL
	ORDER BY created_at DESC
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, meetingID, userID))
}

// MarkDecided moves a WAITING participant to ACCEPTED or REJECTED and
// refreshes joined_at. The WHERE clause is the compare-and-set that
// serializes concurrent accept/reject on the same row: exactly one
// caller wins; the other sees false and must re-read to learn the
// outcome.
func (r *ParticipantRepository) MarkDecided(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, at time.Time) (bool, error) {
	const query = `
	UPDATE participants
	SET status = $1, joined_at = $2, updated_at = NOW()
	WHERE id = $3 AND status = $4
	`

	res, err := r.db.ExecContext(ctx, query, status, at, id, models.ParticipantStatusWaiting)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// SetLeftAt stamps left_at once; a record that already left is not
// touched again.
func (r *ParticipantRepository) SetLeftAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `
	UPDATE participants
	SET left_at = $1, updated_at = NOW()
	WHERE id = $2 AND left_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

// SweepLeftAt stamps left_at for every live participant of a meeting.
// Used by the end-meeting transition.
func (r *ParticipantRepository) SweepLeftAt(ctx context.Context, meetingID uuid.UUID, at time.Time) (int64, error) {
	const query = `
	UPDATE participants
	SET left_at = $1, updated_at = NOW()
	WHERE meeting_id = $2 AND left_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, at, meetingID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *ParticipantRepository) scanOne(row *sql.Row) (*models.Participant, error) {
	var p models.Participant

	err := row.Scan(
		&p.ID,
		&p.MeetingID,
		&p.UserID,
		&p.Status,
		&p.JoinedAt,
		&p.LeftAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
