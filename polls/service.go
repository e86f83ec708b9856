// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/auth"
	"github.com/danielhkuo/quickly-pick-live/models"
	"github.com/danielhkuo/quickly-pick-live/store"
)

// Signer issues access tokens; *auth.TokenAuthority implements it
type Signer interface {
	Sign(identity, pollID, name string) (string, error)
}

// Service enforces poll lifecycle rules. It keeps no state between calls;
// everything authoritative lives in the store.
type Service struct {
	store  store.PollStore
	tokens Signer
	logger *slog.Logger
}

func NewService(pollStore store.PollStore, tokens Signer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  pollStore,
		tokens: tokens,
		logger: logger,
	}
}

// CreatePoll stores a new poll with the creator as admin and sole participant
func (s *Service) CreatePoll(ctx context.Context, fields models.CreatePollFields) (models.Poll, string, error) {
	if err := models.Validate(fields); err != nil {
		return models.Poll{}, "", err
	}

	pollID, err := auth.NewPollID()
	if err != nil {
		return models.Poll{}, "", err
	}
	userID := auth.NewParticipantID()

	s.logger.Debug("creating poll", "poll_id", pollID, "user_id", userID)

	poll, err := s.store.CreatePoll(ctx, models.Poll{
		ID:            pollID,
		Topic:         fields.Topic,
		VotesPerVoter: fields.VotesPerVoter,
		AdminID:       userID,
		HasStarted:    false,
		Participants:  models.Participants{userID: fields.Name},
	})
	if err != nil {
		return models.Poll{}, "", err
	}

	token, err := s.tokens.Sign(userID, poll.ID, fields.Name)
	if err != nil {
		return models.Poll{}, "", err
	}

	s.logger.Info("poll created", "poll_id", poll.ID, "admin_id", userID)
	return poll, token, nil
}

// JoinPoll authorizes a new participant without adding them. They become a
// participant when they connect with the returned token.
func (s *Service) JoinPoll(ctx context.Context, fields models.JoinPollFields) (models.Poll, string, error) {
	if err := models.Validate(fields); err != nil {
		return models.Poll{}, "", err
	}

	userID := auth.NewParticipantID()

	s.logger.Debug("fetching poll to join", "poll_id", fields.PollID, "user_id", userID)

	poll, err := s.store.GetPoll(ctx, fields.PollID)
	if err != nil {
		return models.Poll{}, "", err
	}

	token, err := s.tokens.Sign(userID, poll.ID, fields.Name)
	if err != nil {
		return models.Poll{}, "", err
	}

	s.logger.Info("poll join authorized", "poll_id", poll.ID, "user_id", userID)
	return poll, token, nil
}

// RejoinPoll re-adds a participant under the identity from a previously issued
// token. Repeated calls converge to the same entry.
func (s *Service) RejoinPoll(ctx context.Context, fields models.RejoinPollFields) (models.Poll, error) {
	s.logger.Debug("rejoining poll",
		"poll_id", fields.PollID,
		"user_id", fields.Identity,
		"name", fields.Name,
	)
	return s.AddParticipant(ctx, fields)
}

// AddParticipant adds or updates one participant entry
func (s *Service) AddParticipant(ctx context.Context, fields models.AddParticipantFields) (models.Poll, error) {
	if err := models.Validate(fields); err != nil {
		return models.Poll{}, err
	}
	return s.store.AddParticipant(ctx, fields.PollID, fields.Identity, fields.Name)
}

// RemoveParticipant removes identity from the poll. Once the poll has started,
// membership is frozen and the poll is returned unchanged. The store checks
// hasStarted atomically with the delete, so a concurrent start always wins.
func (s *Service) RemoveParticipant(ctx context.Context, pollID, identity string) (models.Poll, error) {
	poll, err := s.store.RemoveParticipant(ctx, pollID, identity)
	if err != nil {
		return models.Poll{}, err
	}

	if poll.HasStarted {
		s.logger.Debug("poll started, membership frozen", "poll_id", pollID, "user_id", identity)
	} else {
		s.logger.Debug("participant removed", "poll_id", pollID, "user_id", identity)
	}
	return poll, nil
}

func (s *Service) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return s.store.GetPoll(ctx, pollID)
}

// StartPoll freezes membership. Only the admin may start a poll.
func (s *Service) StartPoll(ctx context.Context, pollID, identity string) (models.Poll, error) {
	if err := s.RequireAdmin(ctx, pollID, identity); err != nil {
		return models.Poll{}, err
	}

	poll, err := s.store.StartPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}

	s.logger.Info("poll started", "poll_id", pollID, "participants", len(poll.Participants))
	return poll, nil
}

// RequireAdmin fails with an auth error unless identity created the poll
func (s *Service) RequireAdmin(ctx context.Context, pollID, identity string) error {
	poll, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.AdminID != identity {
		s.logger.Warn("non-admin attempted admin action", "poll_id", pollID, "user_id", identity)
		return apperr.Auth("Admin privileges required", nil)
	}
	return nil
}
