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

type MeetingRepository struct {
	db *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a meeting. A unique-constraint error on the code
// column is returned as-is so the service can retry with a fresh code
// (detect it with IsUniqueViolation).
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	const query = `
	INSERT INTO meetings (
		id,
		code,
		title,
		host_id,
		media_room_id,
		status,
		start_time,
		deleted,
		created_at,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		meeting.ID,
		meeting.Code,
		meeting.Title,
		meeting.HostID,
		meeting.MediaRoomID,
		meeting.Status,
		meeting.StartTime,
	).Scan(&meeting.CreatedAt, &meeting.UpdatedAt)
}

// GetByCode looks a meeting up by its shareable code. Soft-deleted
// meetings are invisible here.
func (r *MeetingRepository) GetByCode(ctx context.Context, code string) (*models.Meeting, error) {
	const query = `
	SELECT id, code, title, host_id, media_room_id, status, start_time, end_time, deleted, created_at, updated_at
	FROM meetings
	WHERE code = $1 AND deleted = FALSE
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	const query = `
	SELECT id, code, title, host_id, media_room_id, status, start_time, end_time, deleted, created_at, updated_at
	FROM meetings
	WHERE id = $1 AND deleted = FALSE
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// ListByHost returns the host's meetings, newest-created first,
// excluding soft-deleted ones.
func (r *MeetingRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.Meeting, error) {
	const query = `
	SELECT id, code, title, host_id, media_room_id, status, start_time, end_time, deleted, created_at, updated_at
	FROM meetings
	WHERE host_id = $1 AND deleted = FALSE
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []models.Meeting
	for rows.Next() {
		var m models.Meeting
		if err := rows.Scan(
			&m.ID, &m.Code, &m.Title, &m.HostID, &m.MediaRoomID,
			&m.Status, &m.StartTime, &m.EndTime, &m.Deleted,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}

	return meetings, rows.Err()
}

// End flips the meeting to ENDED and stamps the end time. The WHERE
// clause only matches an ACTIVE row, so the transition is one-way even
// under concurrent calls; returns false when the meeting was already
// ended.
func (r *MeetingRepository) End(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	const query = `
	UPDATE meetings
	SET status = $1, end_time = $2, updated_at = NOW()
	WHERE id = $3 AND status = $4 AND deleted = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, models.MeetingStatusEnded, at, id, models.MeetingStatusActive)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// SetDeleted marks the meeting soft-deleted. History stays in place;
// the row just stops being reachable through code or host lookups.
func (r *MeetingRepository) SetDeleted(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE meetings
	SET deleted = TRUE, updated_at = NOW()
	WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *MeetingRepository) scanOne(row *sql.Row) (*models.Meeting, error) {
	var m models.Meeting

	err := row.Scan(
		&m.ID, &m.Code, &m.Title, &m.HostID, &m.MediaRoomID,
		&m.Status, &m.StartTime, &m.EndTime, &m.Deleted,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}
