// Package media adapts the remote real-time media node (room
// provisioning for audio/video) behind a small contract. Every call
// crosses a process boundary and can be slow or fail; callers treat
// failures as degraded functionality, never as a reason to block a
// meeting or participant state transition.
package media

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound = errors.New("media room not found")
	ErrNodeDown     = errors.New("media node unreachable")
)

// RoomService is the contract the meeting and admission services
// depend on.
type RoomService interface {
	// CreateRoom provisions a remote room and returns its id.
	CreateRoom(ctx context.Context) (string, error)

	// JoinRoom registers a user in an existing room.
	JoinRoom(ctx context.Context, roomID, userID, displayName string) error

	// LeaveRoom removes a user from a room. No-op if the room or the
	// user is absent.
	LeaveRoom(ctx context.Context, roomID, userID string) error

	// CloseRoom tears a room down. No-op if absent.
	CloseRoom(ctx context.Context, roomID string) error
}

// Health is a point-in-time snapshot of media node connectivity,
// surfaced on the health endpoint so degraded media is visible without
// being conflated with admission failures.
type Health struct {
	Healthy   bool      `json:"healthy"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthReporter is implemented by room services that track node
// connectivity.
type HealthReporter interface {
	Health() Health
}
