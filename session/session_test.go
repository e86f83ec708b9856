// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/auth"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/testutil"
)

func newTestGate(t *testing.T) (*Gate, string) {
	t.Helper()
	tokens := auth.NewTokenAuthority(testutil.TestJWTSecret, time.Hour)
	token, err := tokens.Sign("user-1", "ABC123", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	return NewGate(tokens, nil), token
}

func TestAuthenticate(t *testing.T) {
	gate, token := newTestGate(t)

	s, err := gate.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	want := models.Session{Identity: "user-1", PollID: "ABC123", Name: "Alice"}
	if s != want {
		t.Errorf("Authenticate() = %+v, want %+v", s, want)
	}

	for _, bad := range []string{"", "not-a-token", token + "x"} {
		if _, err := gate.Authenticate(bad); !apperr.Is(err, apperr.KindAuth) {
			t.Errorf("Authenticate(%q) error = %v, want auth error", bad, err)
		}
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(string) (models.Session, error) {
	return models.Session{}, errors.New("boom")
}

func TestAuthenticate_WrapsUntaggedErrors(t *testing.T) {
	gate := NewGate(failingVerifier{}, nil)

	_, err := gate.Authenticate("anything")
	if !apperr.Is(err, apperr.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestRequireAccessToken(t *testing.T) {
	gate, token := newTestGate(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalled bool
	}{
		{"valid token", `{"accessToken":"` + token + `"}`, http.StatusOK, true},
		{"missing token", `{}`, http.StatusForbidden, false},
		{"tampered token", `{"accessToken":"` + token[:len(token)-4] + `AAAA"}`, http.StatusForbidden, false},
		{"malformed body", `{not json`, http.StatusForbidden, false},
		{"empty body", ``, http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotBody string
			var gotSession models.Session
			handler := gate.RequireAccessToken(func(w http.ResponseWriter, r *http.Request) {
				called = true
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				gotSession, _ = FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/polls/rejoin", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler(w, req)

			testutil.AssertStatus(t, w, tt.wantStatus)
			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if !called {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != "Invalid or expired access token" {
					t.Errorf("unexpected message %q", resp.Message)
				}
				return
			}
			if gotBody != tt.body {
				t.Errorf("body not restored: got %q", gotBody)
			}
			if gotSession.Identity != "user-1" || gotSession.PollID != "ABC123" {
				t.Errorf("unexpected session %+v", gotSession)
			}
		})
	}
}

func TestRequireAccessToken_LogsMalformedBody(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gate := NewGate(auth.NewTokenAuthority(testutil.TestJWTSecret, time.Hour), logger)

	handler := gate.RequireAccessToken(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/polls/rejoin", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	handler(w, req)

	testutil.AssertStatus(t, w, http.StatusForbidden)
	if !strings.Contains(logs.String(), "access token body not decodable") {
		t.Errorf("decode failure not logged: %s", logs.String())
	}
}

func TestHandshakeToken(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		query   string
		want    string
	}{
		{"token header", map[string]string{"token": "h"}, "", "h"},
		{"bearer header", map[string]string{"Authorization": "Bearer b"}, "", "b"},
		{"query param", nil, "?token=q", "q"},
		{"header wins over query", map[string]string{"token": "h"}, "?token=q", "h"},
		{"non-bearer authorization ignored", map[string]string{"Authorization": "Basic x"}, "?token=q", "q"},
		{"empty bearer falls through", map[string]string{"Authorization": "Bearer  "}, "?token=q", "q"},
		{"nothing", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := HandshakeToken(req); got != tt.want {
				t.Errorf("HandshakeToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthenticateHandshake(t *testing.T) {
	gate, token := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	s, err := gate.AuthenticateHandshake(req)
	if err != nil {
		t.Fatalf("AuthenticateHandshake() error = %v", err)
	}
	if s.Identity != "user-1" {
		t.Errorf("unexpected identity %q", s.Identity)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	if _, err := gate.AuthenticateHandshake(req); !apperr.Is(err, apperr.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no session in empty context")
	}
}
