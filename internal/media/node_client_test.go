package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, handler http.HandlerFunc) (*NodeClient, *Registry) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	registry := NewRegistry()
	return NewNodeClient(srv.URL, 2*time.Second, registry), registry
}

func TestCreateRoomRegistersLocally(t *testing.T) {
	client, registry := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rooms", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})

	roomID, err := client.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.True(t, registry.Has(roomID))
}

func TestJoinRoomReprovisionsUnknownRoom(t *testing.T) {
	var paths []string
	client, registry := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	// room-old predates this process; the node should be asked to
	// create it before the join.
	err := client.JoinRoom(context.Background(), "room-old", "u1", "Alice")
	require.NoError(t, err)

	require.Equal(t, []string{"/rooms", "/rooms/room-old/join"}, paths)
	assert.True(t, registry.Has("room-old"))
	assert.Equal(t, map[string]string{"u1": "Alice"}, registry.Participants("room-old"))
}

func TestLeaveRoomDropsEmptyRoom(t *testing.T) {
	client, registry := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	registry.Add("room-1")
	registry.Join("room-1", "u1", "Alice")

	err := client.LeaveRoom(context.Background(), "room-1", "u1")
	require.NoError(t, err)
	assert.False(t, registry.Has("room-1"))
}

func TestLeaveRoomReachesNodeAfterRestart(t *testing.T) {
	var paths []string
	client, _ := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	// The room was provisioned by a previous process incarnation, so
	// the local registry has never heard of it. The node still must be
	// told to drop the participant.
	err := client.LeaveRoom(context.Background(), "room-old", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/rooms/room-old/leave"}, paths)
}

func TestLeaveRoomGoneOnNode(t *testing.T) {
	client, registry := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	registry.Add("room-1")
	registry.Join("room-1", "u1", "Alice")

	err := client.LeaveRoom(context.Background(), "room-1", "u1")
	require.NoError(t, err)
	assert.False(t, registry.Has("room-1"))
}

func TestRoomNotFound(t *testing.T) {
	client, registry := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/join") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	registry.Add("room-1")

	err := client.JoinRoom(context.Background(), "room-1", "u1", "Alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUnconfiguredNode(t *testing.T) {
	client := NewNodeClient("", 2*time.Second, NewRegistry())

	_, err := client.CreateRoom(context.Background())
	assert.ErrorIs(t, err, ErrNodeDown)

	h := client.Health()
	assert.False(t, h.Healthy)
	assert.Equal(t, "media node not configured", h.LastError)
}

func TestHealthBeforeFirstCall(t *testing.T) {
	client, _ := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {})

	h := client.Health()
	assert.False(t, h.Healthy)
	assert.Equal(t, "media node not yet contacted", h.LastError)
}

func TestHealthTracksLastCall(t *testing.T) {
	fail := false
	client, _ := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.True(t, client.Health().Healthy)

	fail = true
	_, err = client.CreateRoom(context.Background())
	require.Error(t, err)
	assert.False(t, client.Health().Healthy)
	assert.NotEmpty(t, client.Health().LastError)
}
