// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens and ID generation.

# Access Tokens

A TokenAuthority signs HS256 JWTs with a process-wide secret:

	tokens := auth.NewTokenAuthority(cfg.JWTSecret, cfg.PollDuration)
	token, err := tokens.Sign(identity, pollID, name)
	session, err := tokens.Verify(token)

The subject claim carries the participant identity; the payload carries
pollID and name. A token only ever authorizes the poll embedded in it.
Tokens are never stored server-side and expire after the poll duration.

Verify fails with an apperr auth error when the token is empty, malformed,
signed with another key or algorithm, has no expiry, or has expired. It does
no I/O.

# ID Generation

Poll IDs are 6 characters from A-Z0-9 so they can be read out loud:

	pollID, err := auth.NewPollID()

Participant identities are random UUIDs:

	identity := auth.NewParticipantID()
*/
package auth
