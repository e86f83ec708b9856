// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-pick-live/handlers"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/polls"
	"github.com/danielhkuo/quickly-pick-live/realtime"
	"github.com/danielhkuo/quickly-pick-live/session"
)

func NewRouter(svc *polls.Service, gate *session.Gate, gateway *realtime.Gateway) *http.ServeMux {
	mux := http.NewServeMux()

	pollHandler := handlers.NewPollHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll lobby
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/join", middleware.WithLogging(pollHandler.JoinPoll))
	mux.HandleFunc("POST /polls/rejoin", middleware.WithLogging(gate.RequireAccessToken(pollHandler.RejoinPoll)))

	// Real-time connection (token checked before upgrade)
	mux.HandleFunc("GET /ws", middleware.WithLogging(gateway.ServeWS))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-pick-live API v1"))
	})

	return mux
}
