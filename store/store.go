// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/quickly-pick-live/models"
)

// PollStore is the atomic state store for poll aggregates.
// Implementations must mutate participants one entry at a time so that
// concurrent joins and leaves on the same poll never lose each other's writes,
// and must refresh the poll's expiry on every successful mutation.
type PollStore interface {
	// CreatePoll stores a new poll exactly once. Fails with a conflict error
	// if a live poll with the same ID exists.
	CreatePoll(ctx context.Context, poll models.Poll) (models.Poll, error)

	// GetPoll fails with a not-found error if the poll is absent or expired.
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)

	// AddParticipant upserts one participant entry.
	AddParticipant(ctx context.Context, pollID, identity, name string) (models.Poll, error)

	// RemoveParticipant deletes one participant entry; absent entries are a no-op.
	// Once the poll has started membership is frozen and nothing is deleted,
	// checked in the same atomic step as the delete.
	RemoveParticipant(ctx context.Context, pollID, identity string) (models.Poll, error)

	// StartPoll sets hasStarted. There is no way back.
	StartPoll(ctx context.Context, pollID string) (models.Poll, error)
}

var (
	_ PollStore = (*RedisStore)(nil)
	_ PollStore = (*SQLStore)(nil)
)

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
