// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// opTimeout bounds each store round trip made on behalf of a connection
const opTimeout = 5 * time.Second

// Coordinator is the subset of the poll service the gateway drives
type Coordinator interface {
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	AddParticipant(ctx context.Context, fields models.AddParticipantFields) (models.Poll, error)
	RemoveParticipant(ctx context.Context, pollID, identity string) (models.Poll, error)
	StartPoll(ctx context.Context, pollID, identity string) (models.Poll, error)
	RequireAdmin(ctx context.Context, pollID, identity string) error
}

// HandshakeAuthenticator verifies the token offered on a connection attempt;
// *session.Gate implements it
type HandshakeAuthenticator interface {
	AuthenticateHandshake(r *http.Request) (models.Session, error)
}

type Gateway struct {
	polls    Coordinator
	gate     HandshakeAuthenticator
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// conns tracks upgraded connections whose handlers are still running
	conns sync.WaitGroup
}

func NewGateway(polls Coordinator, gate HandshakeAuthenticator, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		polls: polls,
		gate:  gate,
		hub:   NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is handled by the token, not the browser origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run drives the hub until ctx is cancelled
func (g *Gateway) Run(ctx context.Context) {
	g.hub.Run(ctx)
}

// Wait blocks until every upgraded connection has finished its disconnect
// handling. Hijacked connections are not tracked by http.Server, so callers
// wait here before closing the store.
func (g *Gateway) Wait() {
	g.conns.Wait()
}

// ServeWS authenticates the handshake, upgrades, joins the caller to the poll
// and serves its events until the connection closes.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	s, err := g.gate.AuthenticateHandshake(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid or expired access token")
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		g.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	g.conns.Add(1)
	defer g.conns.Done()

	logger := g.logger.With("poll_id", s.PollID, "participant_id", s.Identity)
	c := newClient(conn, s, logger)

	g.hub.Register(c)
	go c.writePump()

	logger.Info("participant connected", "name", s.Name, "remote", middleware.GetClientIP(r))

	g.join(c)
	c.readPump(g.handleFrame)

	g.leave(c, g.hub.Unregister(c))
}

func (g *Gateway) join(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	poll, err := g.polls.AddParticipant(ctx, models.AddParticipantFields{
		PollID:   c.session.PollID,
		Identity: c.session.Identity,
		Name:     c.session.Name,
	})
	if err != nil {
		g.sendException(c, err)
		return
	}
	g.broadcastPoll(poll)
}

// leave runs after the socket is gone, so it uses its own deadline. The
// participant is only removed when its last connection on this instance closes.
func (g *Gateway) leave(c *Client, remaining int) {
	if remaining > 0 {
		c.logger.Info("participant disconnected, still connected elsewhere", "connections", remaining)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	poll, err := g.polls.RemoveParticipant(ctx, c.session.PollID, c.session.Identity)
	if err != nil {
		c.logger.Warn("failed to remove participant on disconnect", "error", err)
		return
	}

	// A reconnect that registered while the delete was in flight may have
	// had its add overwritten; put the entry back.
	if g.hub.Connections(c.session.PollID, c.session.Identity) > 0 {
		poll, err = g.polls.AddParticipant(ctx, models.AddParticipantFields{
			PollID:   c.session.PollID,
			Identity: c.session.Identity,
			Name:     c.session.Name,
		})
		if err != nil {
			c.logger.Warn("failed to restore reconnected participant", "error", err)
			return
		}
	}

	c.logger.Info("participant disconnected", "participants", len(poll.Participants))
	g.broadcastPoll(poll)
}

func (g *Gateway) handleFrame(c *Client, frame []byte) {
	var in models.InboundEvent
	if err := json.Unmarshal(frame, &in); err != nil {
		g.sendException(c, apperr.Validation("Invalid event payload"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	c.logger.Debug("event received", "event", in.Event)

	var err error
	switch in.Event {
	case models.EventRemoveParticipant:
		err = g.removeParticipant(ctx, c, in.Data)
	case models.EventStartPoll:
		err = g.startPoll(ctx, c)
	case models.EventGetPoll:
		err = g.getPoll(ctx, c)
	default:
		err = apperr.Validation(fmt.Sprintf("Unknown event %q", in.Event))
	}
	if err != nil {
		g.sendException(c, err)
	}
}

func (g *Gateway) removeParticipant(ctx context.Context, c *Client, data json.RawMessage) error {
	var payload models.RemoveParticipantPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return apperr.Validation("Invalid event payload")
		}
	}
	if err := models.Validate(payload); err != nil {
		return err
	}

	if err := g.polls.RequireAdmin(ctx, c.session.PollID, c.session.Identity); err != nil {
		return err
	}

	poll, err := g.polls.RemoveParticipant(ctx, c.session.PollID, payload.ID)
	if err != nil {
		return err
	}
	c.logger.Info("participant removed by admin", "removed_id", payload.ID)
	g.broadcastPoll(poll)
	return nil
}

func (g *Gateway) startPoll(ctx context.Context, c *Client) error {
	poll, err := g.polls.StartPoll(ctx, c.session.PollID, c.session.Identity)
	if err != nil {
		return err
	}
	g.broadcastPoll(poll)
	return nil
}

func (g *Gateway) getPoll(ctx context.Context, c *Client) error {
	poll, err := g.polls.GetPoll(ctx, c.session.PollID)
	if err != nil {
		return err
	}
	return g.send(c, models.EventPollUpdated, poll)
}

func (g *Gateway) broadcastPoll(poll models.Poll) {
	payload, err := json.Marshal(models.Event{Event: models.EventPollUpdated, Data: poll})
	if err != nil {
		g.logger.Error("failed to encode poll update", "poll_id", poll.ID, "error", err)
		return
	}
	g.hub.Broadcast(poll.ID, payload)
}

func (g *Gateway) send(c *Client, event string, data any) error {
	payload, err := json.Marshal(models.Event{Event: event, Data: data})
	if err != nil {
		return apperr.Internal("failed to encode event", err)
	}
	g.hub.Send(c, payload)
	return nil
}

// sendException reports err to c; the connection stays open
func (g *Gateway) sendException(c *Client, err error) {
	exc := TranslateError(err)
	if exc.Status == models.StatusInternal {
		c.logger.Warn("event failed", "error", err)
	}
	if sendErr := g.send(c, models.EventException, exc); sendErr != nil {
		c.logger.Error("failed to send exception", "error", sendErr)
	}
}
