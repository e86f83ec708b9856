// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, response and event types.

# Domain Types

  - Poll: id, topic, votesPerVoter, adminID, hasStarted, participants
  - Participants: identity -> display name
  - Session: identity, pollID and name carried by a verified access token

# Coordinator Inputs

  - CreatePollFields: topic (1-100), votesPerVoter (1-5), name (1-25)
  - JoinPollFields: pollID (6 chars), name
  - RejoinPollFields / AddParticipantFields: pollID, identity, name

Inputs carry `validate` tags; check them with:

	if err := models.Validate(fields); err != nil {
		return err // apperr validation error, one message per field
	}

# Real-time Events

Frames over the WebSocket are {"event": ..., "data": ...}.

Server to client:

	poll_updated  data: Poll
	exception     data: {"status": "BAD_REQUEST" | "INTERNAL", "message": "..."}

Client to server:

	remove_participant  data: {"id": "<identity>"}
	start_poll
	get_poll
*/
package models
