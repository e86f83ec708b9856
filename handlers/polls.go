// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/polls"
	"github.com/danielhkuo/quickly-pick-live/session"
)

type PollHandler struct {
	svc *polls.Service
}

func NewPollHandler(svc *polls.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, token, err := h.svc.CreatePoll(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.PollTokenResponse{
		Poll:        poll,
		AccessToken: token,
	})
}

// JoinPoll handles POST /polls/join
func (h *PollHandler) JoinPoll(w http.ResponseWriter, r *http.Request) {
	var req models.JoinPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, token, err := h.svc.JoinPoll(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollTokenResponse{
		Poll:        poll,
		AccessToken: token,
	})
}

// RejoinPoll handles POST /polls/rejoin. It must sit behind
// session.Gate.RequireAccessToken, which supplies the caller's identity.
func (h *PollHandler) RejoinPoll(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		slog.Error("rejoin reached without a session")
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid or expired access token")
		return
	}

	poll, err := h.svc.RejoinPoll(r.Context(), models.RejoinPollFields{
		PollID:   s.PollID,
		Identity: s.Identity,
		Name:     s.Name,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}
