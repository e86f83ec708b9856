// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// maxBodyBytes bounds how much of a request body the gate will buffer
const maxBodyBytes = 1 << 20

// Verifier turns an access token into a session; *auth.TokenAuthority implements it
type Verifier interface {
	Verify(token string) (models.Session, error)
}

type contextKey struct{}

// Gate rejects requests and connection attempts that lack a valid access token
type Gate struct {
	verifier Verifier
	logger   *slog.Logger
}

func NewGate(verifier Verifier, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{verifier: verifier, logger: logger}
}

// Authenticate verifies token. Every failure is an apperr auth error.
func (g *Gate) Authenticate(token string) (models.Session, error) {
	s, err := g.verifier.Verify(token)
	if err != nil {
		if !apperr.Is(err, apperr.KindAuth) {
			err = apperr.Auth("Invalid or expired access token", err)
		}
		return models.Session{}, err
	}
	return s, nil
}

// RequireAccessToken reads accessToken from the JSON body, verifies it and
// attaches the session to the request context. The body is restored so the
// next handler can decode it again.
func (g *Gate) RequireAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		r.Body.Close()
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req models.RejoinPollRequest
		// Malformed bodies fall through to an empty token and fail verification
		if err := json.Unmarshal(body, &req); err != nil {
			g.logger.Debug("access token body not decodable",
				"path", r.URL.Path,
				"remote", middleware.GetClientIP(r),
				"error", err,
			)
		}

		s, err := g.Authenticate(req.AccessToken)
		if err != nil {
			g.logger.Debug("access token rejected",
				"path", r.URL.Path,
				"remote", middleware.GetClientIP(r),
				"error", err,
			)
			middleware.ErrorResponse(w, http.StatusForbidden, "Invalid or expired access token")
			return
		}

		next(w, r.WithContext(WithSession(r.Context(), s)))
	}
}

// HandshakeToken extracts the token offered when opening a real-time connection.
// It checks the token header, then an Authorization bearer header, then the
// token query parameter (browsers cannot set headers on WebSocket upgrades).
func HandshakeToken(r *http.Request) string {
	if token := r.Header.Get("token"); token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return r.URL.Query().Get("token")
}

// AuthenticateHandshake verifies the token offered on a connection attempt
func (g *Gate) AuthenticateHandshake(r *http.Request) (models.Session, error) {
	s, err := g.Authenticate(HandshakeToken(r))
	if err != nil {
		g.logger.Debug("handshake rejected",
			"remote", middleware.GetClientIP(r),
			"error", err,
		)
		return models.Session{}, err
	}
	return s, nil
}

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by RequireAccessToken
func FromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(models.Session)
	return s, ok
}
