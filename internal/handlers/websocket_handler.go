package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nexmeet/backend/internal/middlewares"
	ws "github.com/nexmeet/backend/internal/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS layer
	},
}

// WebSocketHandler upgrades authenticated clients and connects them to
// the notification hub. Clients receive their user queue automatically
// and manage meeting-topic subscriptions with subscribe/unsubscribe
// messages.
type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Subscribe is the GET /api/ws endpoint. Must be protected by
// WebSocketAuthMiddleware.
func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	caller, ok := middlewares.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &ws.Client{
		ID:    uuid.New(),
		Email: caller.Email,
		Conn:  conn,
		Send:  make(chan ws.Event, sendBuffer),
		Done:  make(chan struct{}),
	}

	h.hub.Register(client)

	log.Info().Str("client_id", client.ID.String()).Str("email", caller.Email).Msg("subscriber connected")

	go h.readPump(client)
	go h.writePump(client)
}

// readPump consumes subscription commands until the connection drops,
// then detaches the client from the hub.
func (h *WebSocketHandler) readPump(client *ws.Client) {
	defer func() {
		h.hub.Unregister(client)
		log.Info().Str("client_id", client.ID.String()).Msg("subscriber disconnected")
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ws.ClientMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", client.ID.String()).Msg("unexpected websocket close")
			}
			return
		}

		switch msg.Type {
		case ws.MsgSubscribe:
			if msg.MeetingCode != "" {
				h.hub.Subscribe(client, ws.MeetingTopic(msg.MeetingCode))
			}
		case ws.MsgUnsubscribe:
			if msg.MeetingCode != "" {
				h.hub.Unsubscribe(client, ws.MeetingTopic(msg.MeetingCode))
			}
		case ws.MsgPing:
			select {
			case client.Send <- ws.Event{"type": "pong"}:
			default:
			}
		default:
			log.Debug().Str("type", msg.Type).Msg("unknown websocket message type")
		}
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (h *WebSocketHandler) writePump(client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case event := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Str("client_id", client.ID.String()).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Done:
			return
		}
	}
}
