// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-pick-live/auth"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/polls"
	"github.com/danielhkuo/quickly-pick-live/realtime"
	"github.com/danielhkuo/quickly-pick-live/session"
	"github.com/danielhkuo/quickly-pick-live/store"
	"github.com/danielhkuo/quickly-pick-live/testutil"
)

func setupRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	_, client := testutil.SetupRedis(t)
	cfg := testutil.GetTestConfig()
	tokens := auth.NewTokenAuthority(cfg.JWTSecret, cfg.PollDuration)
	svc := polls.NewService(store.NewRedisStore(client, cfg.PollDuration, nil), tokens, nil)
	gate := session.NewGate(tokens, nil)
	return NewRouter(svc, gate, realtime.NewGateway(svc, gate, nil))
}

func TestHealthEndpoint(t *testing.T) {
	mux := setupRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := setupRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "quickly-pick-live API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux := setupRouter(t)

	// 400 and 403 are valid here; only 405 means the route is missing
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/polls"},
		{"POST", "/polls/join"},
		{"POST", "/polls/rejoin"},
		{"GET", "/ws"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := setupRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/polls"},
		{"POST", "/ws"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestCreateJoinRejoinThroughRouter(t *testing.T) {
	mux := setupRouter(t)

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{Topic: "Lunch", VotesPerVoter: 2, Name: "Alice"}, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.PollTokenResponse
	testutil.AssertJSON(t, w, &created)

	req = testutil.MakeRequest("POST", "/polls/join", models.JoinPollRequest{PollID: created.Poll.ID, Name: "Bob"}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var joined models.PollTokenResponse
	testutil.AssertJSON(t, w, &joined)

	req = testutil.MakeRequest("POST", "/polls/rejoin", models.RejoinPollRequest{AccessToken: joined.AccessToken}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var poll models.Poll
	testutil.AssertJSON(t, w, &poll)
	if len(poll.Participants) != 2 {
		t.Errorf("Expected 2 participants after rejoin, got %v", poll.Participants)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	mux := setupRouter(t)

	t.Run("rejoin", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/polls/rejoin", models.RejoinPollRequest{AccessToken: "forged"}, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("websocket handshake", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ws?token=forged", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})
}
