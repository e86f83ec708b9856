// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Pick Live API.

# Handler Types

PollHandler wraps the poll service:

	pollHandler := handlers.NewPollHandler(svc)

# Endpoints

	POST /polls        → CreatePoll (returns poll and admin access token)
	POST /polls/join   → JoinPoll   (returns poll and a fresh access token)
	POST /polls/rejoin → RejoinPoll (re-adds the identity in the token)

JoinPoll does not add the caller to the poll; that happens when they connect
to GET /ws (or call RejoinPoll) with the token.

RejoinPoll must be wrapped with session.Gate.RequireAccessToken, which reads
{"accessToken": ...} from the body and rejects bad tokens with 403.

# Errors

Service errors go through middleware.WriteError: validation → 400,
not found → 404, conflict → 409, auth → 403, anything else → 500.
*/
package handlers
