// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Pick Live API server.

Quickly Pick Live runs the lobby of a live poll: a creator opens a poll, others
join with a six-character code, and everyone connected sees the participant
list change in real time until the admin starts the poll.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	JWT_SECRET=... REDIS_URL=redis://localhost:6379/0 go run .

Or with flags:

	go run . -p 3000 -store sqlite -d ./polls.db -jwt-secret dev

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - JWT_SECRET (-jwt-secret): Secret for access token signing
  - DATABASE_URL (-d): only for the postgres and sqlite stores

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - STORE_TYPE (-store): redis (default), postgres or sqlite
  - REDIS_URL (-r): default redis://localhost:6379/0
  - POLL_DURATION (-poll-duration): poll and token lifetime in seconds (default: 7200)

# Architecture

Every instance is stateless apart from its open WebSocket connections; polls
live in the shared store.

  - polls: lifecycle rules (create, join, rejoin, remove, start)
  - store: Redis and SQL poll stores with atomic per-field updates
  - auth: poll/participant IDs and JWT access tokens
  - session: token checks for HTTP requests and WebSocket handshakes
  - realtime: WebSocket gateway, room hub and exception translation
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and error helpers
  - models: Domain, request/response and event types plus validation
  - apperr: Error kinds shared by every layer
  - db: SQL connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
