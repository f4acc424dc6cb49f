package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helmpoint/maneuverboard/internal/logging"
)

const (
	clientSendBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 16 * 1024
)

// client is one connected WebSocket session.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
	log    logging.Logger
}

func (c *client) sendError(code, message string) {
	select {
	case c.send <- ServerMessage{Type: MsgTypeError, Data: ErrorPayload{Code: code, Message: message}}:
	default:
	}
}

// readPump decodes client messages until the connection drops, then
// unregisters the session.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
		c.log.Info(ctx, "client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn(ctx, "read failed", logging.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("BAD_REQUEST", "malformed message: "+err.Error())
			continue
		}
		c.server.handleMessage(ctx, c, msg)
	}
}

// writePump serializes outbound messages and keeps the connection alive with
// pings. It exits when the send channel closes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
