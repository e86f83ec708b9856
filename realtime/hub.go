// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"log/slog"
)

// sendBufferSize is how many frames may queue for one client before it is dropped
const sendBufferSize = 16

type roomMessage struct {
	pollID  string
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// unregisterRequest carries back how many connections the same identity
// still holds in the poll after the removal.
type unregisterRequest struct {
	client    *Client
	remaining chan int
}

type countRequest struct {
	pollID   string
	identity string
	reply    chan int
}

// Hub tracks which connections belong to which poll on this instance and fans
// frames out to them. A single goroutine (Run) owns all room state; callers
// talk to it over channels. Only that goroutine sends on or closes a
// client's send channel.
type Hub struct {
	register   chan *Client
	unregister chan unregisterRequest
	broadcast  chan roomMessage
	direct     chan directMessage
	count      chan countRequest
	done       chan struct{}

	rooms  map[string]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan unregisterRequest),
		broadcast:  make(chan roomMessage),
		direct:     make(chan directMessage),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
	}
}

// Run processes hub commands until ctx is cancelled, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for pollID, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, pollID)
			}
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			room, ok := h.rooms[c.session.PollID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.session.PollID] = room
			}
			room[c] = struct{}{}
			h.logger.Debug("client registered",
				"poll_id", c.session.PollID,
				"participant_id", c.session.Identity,
				"room_size", len(room),
			)

		case req := <-h.unregister:
			h.remove(req.client)
			req.remaining <- h.connections(req.client.session.PollID, req.client.session.Identity)

		case req := <-h.count:
			req.reply <- h.connections(req.pollID, req.identity)

		case msg := <-h.broadcast:
			for c := range h.rooms[msg.pollID] {
				h.deliver(c, msg.payload)
			}

		case msg := <-h.direct:
			if _, ok := h.rooms[msg.client.session.PollID][msg.client]; ok {
				h.deliver(msg.client, msg.payload)
			}
		}
	}
}

// deliver queues payload without blocking; a client whose buffer is full is dropped
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("dropping slow client",
			"poll_id", c.session.PollID,
			"participant_id", c.session.Identity,
		)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	room, ok := h.rooms[c.session.PollID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.session.PollID)
	}
}

// connections counts the clients in pollID's room bound to identity
func (h *Hub) connections(pollID, identity string) int {
	n := 0
	for c := range h.rooms[pollID] {
		if c.session.Identity == identity {
			n++
		}
	}
	return n
}

// Register adds c to its poll's room. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes c and closes its send channel. Safe to call more than once.
// It returns how many other connections on this instance still carry c's
// identity in the same poll; after the hub has stopped it returns 0.
func (h *Hub) Unregister(c *Client) int {
	req := unregisterRequest{client: c, remaining: make(chan int, 1)}
	select {
	case h.unregister <- req:
		return <-req.remaining
	case <-h.done:
		return 0
	}
}

// Connections reports how many connections identity holds in pollID's room
func (h *Hub) Connections(pollID, identity string) int {
	req := countRequest{pollID: pollID, identity: identity, reply: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

// Broadcast sends payload to every client connected to pollID on this instance
func (h *Hub) Broadcast(pollID string, payload []byte) {
	select {
	case h.broadcast <- roomMessage{pollID: pollID, payload: payload}:
	case <-h.done:
	}
}

// Send delivers payload to c alone
func (h *Hub) Send(c *Client, payload []byte) {
	select {
	case h.direct <- directMessage{client: c, payload: payload}:
	case <-h.done:
	}
}
