package models

import (
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingStatusActive MeetingStatus = "ACTIVE"
	MeetingStatusEnded  MeetingStatus = "ENDED"
)

type Meeting struct {
	ID     uuid.UUID `db:"id"`
	Code   string    `db:"code"`
	Title  string    `db:"title"`
	HostID uuid.UUID `db:"host_id"`

	// Remote media room correlated with this meeting. Nil when room
	// provisioning failed at creation time; the meeting still works,
	// just without live media.
	MediaRoomID *string `db:"media_room_id"`

	Status    MeetingStatus `db:"status"`
	StartTime time.Time     `db:"start_time"`
	EndTime   *time.Time    `db:"end_time"`
	Deleted   bool          `db:"deleted"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsHost reports whether the given user created this meeting. The host
// is never stored as a Participant row; hosting is implied by this field.
func (m *Meeting) IsHost(userID uuid.UUID) bool {
	return m.HostID == userID
}
