// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const (
	pollIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	PollIDLength   = 6
)

// NewPollID creates a short, human-shareable poll ID (6 chars, A-Z0-9)
func NewPollID() (string, error) {
	b := make([]byte, PollIDLength)
	out := make([]byte, 0, PollIDLength)

	// 256 is not a multiple of 36, so reject the biased tail
	for len(out) < PollIDLength {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate poll ID: %w", err)
		}
		for _, c := range b {
			if c >= 252 || len(out) == PollIDLength {
				continue
			}
			out = append(out, pollIDAlphabet[int(c)%len(pollIDAlphabet)])
		}
	}
	return string(out), nil
}

// NewParticipantID mints a fresh participant identity.
// Identities are only meaningful within the poll they were issued for.
func NewParticipantID() string {
	return uuid.NewString()
}
