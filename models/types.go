// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "encoding/json"

// Exception status values pushed over the real-time connection
const (
	StatusBadRequest = "BAD_REQUEST"
	StatusInternal   = "INTERNAL"
)

// Real-time event names
const (
	EventPollUpdated       = "poll_updated"
	EventException         = "exception"
	EventRemoveParticipant = "remove_participant"
	EventStartPoll         = "start_poll"
	EventGetPoll           = "get_poll"
)

// Domain types

// identity -> display name
type Participants map[string]string

type Poll struct {
	ID            string       `json:"id"`
	Topic         string       `json:"topic"`
	VotesPerVoter int          `json:"votesPerVoter"`
	AdminID       string       `json:"adminID"`
	HasStarted    bool         `json:"hasStarted"`
	Participants  Participants `json:"participants"`
}

// Session is the identity bound to a verified access token
type Session struct {
	Identity string `json:"userID"`
	PollID   string `json:"pollID"`
	Name     string `json:"name"`
}

// Coordinator inputs

type CreatePollFields struct {
	Topic         string `json:"topic" validate:"required,min=1,max=100"`
	VotesPerVoter int    `json:"votesPerVoter" validate:"required,min=1,max=5"`
	Name          string `json:"name" validate:"required,min=1,max=25"`
}

type JoinPollFields struct {
	PollID string `json:"pollID" validate:"required,len=6"`
	Name   string `json:"name" validate:"required,min=1,max=25"`
}

type RejoinPollFields struct {
	PollID   string `json:"pollID" validate:"required"`
	Identity string `json:"userID" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=25"`
}

type AddParticipantFields = RejoinPollFields

// Request types

type CreatePollRequest = CreatePollFields

type JoinPollRequest = JoinPollFields

type RejoinPollRequest struct {
	AccessToken string `json:"accessToken"`
}

// Response types

type PollTokenResponse struct {
	Poll        Poll   `json:"poll"`
	AccessToken string `json:"accessToken"`
}

// Real-time envelopes

// Event is the frame exchanged over the persistent connection in both directions
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// InboundEvent defers decoding of Data until the handler knows its shape
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RemoveParticipantPayload struct {
	ID string `json:"id" validate:"required"`
}

type Exception struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
