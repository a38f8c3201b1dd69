package models

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantStatusWaiting  ParticipantStatus = "WAITING"
	ParticipantStatusAccepted ParticipantStatus = "ACCEPTED"
	ParticipantStatusRejected ParticipantStatus = "REJECTED"
)

type Participant struct {
	ID        uuid.UUID `db:"id"`
	MeetingID uuid.UUID `db:"meeting_id"`
	UserID    uuid.UUID `db:"user_id"`

	Status ParticipantStatus `db:"status"`

	// JoinedAt is set when the row is created and refreshed when the
	// host accepts. LeftAt is set exactly once by leave, kick, or the
	// end-meeting sweep; a row with LeftAt set is terminal.
	JoinedAt time.Time  `db:"joined_at"`
	LeftAt   *time.Time `db:"left_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Live reports whether this record still represents presence in the
// meeting (nobody set LeftAt yet).
func (p *Participant) Live() bool {
	return p.LeftAt == nil
}
