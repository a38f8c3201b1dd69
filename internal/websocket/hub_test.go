package websocket

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(email string, buffer int) *Client {
	return &Client{
		ID:    uuid.New(),
		Email: email,
		Send:  make(chan Event, buffer),
		Done:  make(chan struct{}),
	}
}

func drain(c *Client) []Event {
	var events []Event
	for {
		select {
		case e := <-c.Send:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a@example.com", 8)
	b := newTestClient("b@example.com", 8)
	outsider := newTestClient("c@example.com", 8)

	hub.Register(a)
	hub.Register(b)
	hub.Register(outsider)
	hub.Subscribe(a, MeetingTopic("abc-defg-hij"))
	hub.Subscribe(b, MeetingTopic("abc-defg-hij"))

	hub.Broadcast(MeetingTopic("abc-defg-hij"), Event{"type": EventMeetingEnded})

	require.Len(t, drain(a), 1)
	require.Len(t, drain(b), 1)
	assert.Empty(t, drain(outsider))
}

func TestNotifyTargetsAllUserConnections(t *testing.T) {
	hub := NewHub()
	tab1 := newTestClient("a@example.com", 8)
	tab2 := newTestClient("a@example.com", 8)
	other := newTestClient("b@example.com", 8)

	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(other)

	hub.Notify("a@example.com", Event{"type": EventJoinAccepted})

	assert.Len(t, drain(tab1), 1)
	assert.Len(t, drain(tab2), 1)
	assert.Empty(t, drain(other))
}

func TestBroadcastSkipsFullBuffer(t *testing.T) {
	hub := NewHub()
	slow := newTestClient("slow@example.com", 1)
	fast := newTestClient("fast@example.com", 8)

	hub.Register(slow)
	hub.Register(fast)
	hub.Subscribe(slow, "meeting/x")
	hub.Subscribe(fast, "meeting/x")

	// Fill the slow client's buffer; the next broadcast must not block.
	hub.Broadcast("meeting/x", Event{"type": "first"})
	hub.Broadcast("meeting/x", Event{"type": "second"})

	assert.Len(t, drain(slow), 1)
	assert.Len(t, drain(fast), 2)
}

func TestUnregisterRemovesEverywhere(t *testing.T) {
	hub := NewHub()
	c := newTestClient("a@example.com", 8)

	hub.Register(c)
	hub.Subscribe(c, "meeting/x")
	hub.Subscribe(c, "meeting/y")
	hub.Unregister(c)

	hub.Broadcast("meeting/x", Event{"type": "x"})
	hub.Broadcast("meeting/y", Event{"type": "y"})
	hub.Notify("a@example.com", Event{"type": "direct"})

	assert.Empty(t, drain(c))
	assert.False(t, c.IsConnected())
}

func TestUnsubscribeStopsTopicOnly(t *testing.T) {
	hub := NewHub()
	c := newTestClient("a@example.com", 8)

	hub.Register(c)
	hub.Subscribe(c, "meeting/x")
	hub.Unsubscribe(c, "meeting/x")

	hub.Broadcast("meeting/x", Event{"type": "topic"})
	hub.Notify("a@example.com", Event{"type": "direct"})

	events := drain(c)
	require.Len(t, events, 1)
	assert.Equal(t, "direct", events[0]["type"])
}

func TestConcurrentSubscribeBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("user@example.com", 64)
			hub.Register(c)
			hub.Subscribe(c, "meeting/x")
			hub.Broadcast("meeting/x", Event{"type": "ping"})
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	// All clients are gone; nothing should be left to deliver to.
	hub.Broadcast("meeting/x", Event{"type": "ping"})
}

func TestClientCloseIdempotent(t *testing.T) {
	c := newTestClient("a@example.com", 1)
	c.Close()
	c.Close()
	assert.False(t, c.IsConnected())
}
