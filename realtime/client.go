// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-pick-live/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one authenticated connection to a poll
type Client struct {
	conn    *websocket.Conn
	session models.Session
	send    chan []byte
	logger  *slog.Logger
}

func newClient(conn *websocket.Conn, s models.Session, logger *slog.Logger) *Client {
	return &Client{
		conn:    conn,
		session: s,
		send:    make(chan []byte, sendBufferSize),
		logger:  logger,
	}
}

// Session returns the identity the connection was authenticated as
func (c *Client) Session() models.Session {
	return c.session
}

// writePump drains send onto the socket and keeps the connection alive with
// pings. It returns when the hub closes send or a write fails, closing the
// socket so readPump unblocks too.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed", "error", err)
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

// readPump hands every inbound text frame to handle until the peer goes away
func (c *Client) readPump(handle func(c *Client, frame []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}
		handle(c, frame)
	}
}
