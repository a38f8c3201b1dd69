package websocket

// ClientMessage is the envelope for everything a subscriber sends
// upstream. Clients only manage their subscriptions; all state changes
// go through the HTTP API.
type ClientMessage struct {
	Type        string `json:"type"`
	MeetingCode string `json:"meetingCode,omitempty"`
}

// Inbound message types.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"
)
