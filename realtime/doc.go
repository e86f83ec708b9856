// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime serves the persistent WebSocket connection at GET /ws.

# Connecting

The access token is read from the token header, an Authorization bearer
header, or the token query parameter. An invalid token gets HTTP 403 and the
connection is never upgraded. After the upgrade the caller is added to the
poll and everyone connected to that poll receives poll_updated.

# Events

Every frame is {"event": ..., "data": ...}.

	client → server
	  get_poll                        current poll, sent to the caller only
	  start_poll                      admin only; broadcast poll_updated
	  remove_participant {"id": ...}  admin only; broadcast poll_updated

	server → client
	  poll_updated {poll}
	  exception    {"status": "BAD_REQUEST"|"INTERNAL", "message": ...}

A failed event produces an exception for that client alone (see
TranslateError); the connection stays open. On disconnect the participant is
removed (a no-op once the poll has started) and the room is told.

# Hub

Hub is an actor: Run owns the poll rooms and every other goroutine talks to
it over channels. Each connection has a write goroutine with a bounded send
buffer; a client that falls behind is dropped. Rooms are local to one
instance.
*/
package realtime
