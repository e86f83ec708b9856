// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls coordinates the poll lifecycle on top of a store.PollStore.

# Operations

	CreatePoll        → new poll, creator is admin and first participant, token
	JoinPoll          → token for a new identity; membership starts on connect
	RejoinPoll        → re-adds the identity carried by an existing token
	AddParticipant    → upserts one participant entry
	RemoveParticipant → deletes one entry; no-op once the poll has started
	StartPoll         → admin only; freezes membership
	GetPoll           → current aggregate

Service holds no poll state of its own, so any number of instances can serve
the same poll as long as they share a store.

# Errors

Inputs are checked with models.Validate before touching the store. Failures
are apperr values: validation, not found, conflict, auth (non-admin StartPoll)
or internal.
*/
package polls
