package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NodeClient talks JSON-over-HTTP to the remote media node and mirrors
// room membership into the in-process Registry. It implements
// RoomService and HealthReporter.
type NodeClient struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	registry *Registry

	mu      sync.RWMutex
	lastErr error
	lastAt  time.Time
}

func NewNodeClient(baseURL string, timeout time.Duration, registry *Registry) *NodeClient {
	return &NodeClient{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		timeout:  timeout,
		registry: registry,
	}
}

func (c *NodeClient) CreateRoom(ctx context.Context) (string, error) {
	roomID := uuid.New().String()

	err := c.call(ctx, http.MethodPost, "/rooms", map[string]string{
		"roomId": roomID,
	})
	if err != nil {
		return "", err
	}

	c.registry.Add(roomID)
	log.Info().Str("room_id", roomID).Msg("media room created")
	return roomID, nil
}

func (c *NodeClient) JoinRoom(ctx context.Context, roomID, userID, displayName string) error {
	// Rooms created by a previous process incarnation are unknown to
	// the local registry; re-register them lazily on the node before
	// joining.
	if !c.registry.Has(roomID) {
		if err := c.call(ctx, http.MethodPost, "/rooms", map[string]string{"roomId": roomID}); err != nil {
			return err
		}
		c.registry.Add(roomID)
	}

	err := c.call(ctx, http.MethodPost, "/rooms/"+roomID+"/join", map[string]string{
		"userId": userID,
		"name":   displayName,
	})
	if err != nil {
		return err
	}

	c.registry.Join(roomID, userID, displayName)
	return nil
}

func (c *NodeClient) LeaveRoom(ctx context.Context, roomID, userID string) error {
	// The room may predate this process incarnation, so the node is
	// always told. A room the node no longer knows needs no leaving.
	err := c.call(ctx, http.MethodPost, "/rooms/"+roomID+"/leave", map[string]string{
		"userId": userID,
	})
	if errors.Is(err, ErrRoomNotFound) {
		c.registry.Remove(roomID)
		return nil
	}
	if err != nil {
		return err
	}

	if empty := c.registry.Leave(roomID, userID); empty {
		c.registry.Remove(roomID)
	}
	return nil
}

func (c *NodeClient) CloseRoom(ctx context.Context, roomID string) error {
	err := c.call(ctx, http.MethodDelete, "/rooms/"+roomID, nil)
	c.registry.Remove(roomID)
	return err
}

// Health returns the connectivity snapshot from the most recent node
// call.
func (c *NodeClient) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := Health{Healthy: c.lastErr == nil, CheckedAt: c.lastAt}
	if c.baseURL == "" {
		h.Healthy = false
		h.LastError = "media node not configured"
		return h
	}
	if c.lastAt.IsZero() {
		h.Healthy = false
		h.LastError = "media node not yet contacted"
		return h
	}
	if c.lastErr != nil {
		h.LastError = c.lastErr.Error()
	}
	return h
}

func (c *NodeClient) call(ctx context.Context, method, path string, body any) error {
	if c.baseURL == "" {
		return ErrNodeDown
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	c.record(err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNodeDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRoomNotFound
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("media node returned %d for %s %s", resp.StatusCode, method, path)
		c.record(err)
		return err
	}

	return nil
}

func (c *NodeClient) record(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.lastAt = time.Now()
	c.mu.Unlock()
}
