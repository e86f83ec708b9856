// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Pick Live API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, gate, gateway)

# Endpoints

Health:

	GET /health

Poll lobby:

	POST /polls        - Create poll, returns admin access token
	POST /polls/join   - Get an access token for an existing poll
	POST /polls/rejoin - Re-add the identity in {"accessToken": ...}

Real-time:

	GET /ws - WebSocket; token via token header, bearer header or ?token=

# Handler Initialization

The router builds the poll handler from the shared service. The session gate
guards /polls/rejoin; the gateway checks its own handshake before upgrading.
*/
package router
