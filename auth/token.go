// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/models"
)

var ErrMissingToken = errors.New("access token is missing")

// Claims is the JWT payload: sub carries the participant identity
type Claims struct {
	PollID string `json:"pollID"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*TokenAuthority)

// WithClock overrides the time source used for iat/exp and validation
func WithClock(now func() time.Time) Option {
	return func(a *TokenAuthority) {
		a.now = now
	}
}

func NewTokenAuthority(secret string, ttl time.Duration, opts ...Option) *TokenAuthority {
	a := &TokenAuthority{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sign issues an HS256 token scoped to pollID for identity
func (a *TokenAuthority) Sign(identity, pollID, name string) (string, error) {
	now := a.now()
	claims := Claims{
		PollID: pollID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the bound session.
// Every failure is an apperr auth error.
func (a *TokenAuthority) Verify(token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, apperr.Auth("Invalid or expired access token", ErrMissingToken)
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return models.Session{}, apperr.Auth("Invalid or expired access token", err)
	}

	return models.Session{
		Identity: claims.Subject,
		PollID:   claims.PollID,
		Name:     claims.Name,
	}, nil
}
