// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/db"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// SQLStore keeps polls in the poll/participant tables created by db.CreateSchema.
// A participant row is the unit of mutation; expires_at is refreshed in the
// same transaction as every write.
type SQLStore struct {
	db      *sql.DB
	dialect string
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type SQLOption func(*SQLStore)

// WithSQLClock overrides the time source used for expiry
func WithSQLClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) {
		s.now = now
	}
}

func NewSQLStore(conn *sql.DB, dialect string, ttl time.Duration, logger *slog.Logger, opts ...SQLOption) *SQLStore {
	s := &SQLStore{
		db:      conn,
		dialect: dialect,
		ttl:     ttl,
		now:     time.Now,
		logger:  resolveLogger(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rebind rewrites ? placeholders to $N for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) expiry(now time.Time) int64 {
	return now.Add(s.ttl).Unix()
}

func (s *SQLStore) CreatePoll(ctx context.Context, poll models.Poll) (models.Poll, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// An expired poll is equivalent to no poll, so reclaim the ID first
	if _, err := s.purgeExpired(ctx, tx, now, poll.ID); err != nil {
		return models.Poll{}, err
	}

	hasStarted := 0
	if poll.HasStarted {
		hasStarted = 1
	}

	res, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO poll (id, topic, votes_per_voter, admin_id, has_started, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), poll.ID, poll.Topic, poll.VotesPerVoter, poll.AdminID, hasStarted, s.expiry(now))
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll %s: %w", poll.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll %s: %w", poll.ID, err)
	} else if n == 0 {
		return models.Poll{}, apperr.Conflict("poll %s already exists", poll.ID)
	}

	for identity, name := range poll.Participants {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO participant (poll_id, participant_id, name)
			VALUES (?, ?, ?)
		`), poll.ID, identity, name)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	created, err := s.loadPoll(ctx, tx, poll.ID, now)
	if err != nil {
		return models.Poll{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("poll stored", "poll_id", poll.ID, "expires_at", s.expiry(now))
	return created, nil
}

func (s *SQLStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return s.loadPoll(ctx, s.db, pollID, s.now())
}

func (s *SQLStore) AddParticipant(ctx context.Context, pollID, identity, name string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO participant (poll_id, participant_id, name)
			VALUES (?, ?, ?)
			ON CONFLICT (poll_id, participant_id) DO UPDATE SET name = excluded.name
		`), pollID, identity, name)
		if err != nil {
			return fmt.Errorf("failed to upsert participant: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) RemoveParticipant(ctx context.Context, pollID, identity string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`
			DELETE FROM participant
			WHERE poll_id = ? AND participant_id = ?
			  AND EXISTS (SELECT 1 FROM poll WHERE id = ? AND has_started = 0)
		`), pollID, identity, pollID)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) StartPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE poll SET has_started = 1 WHERE id = ?
		`), pollID)
		if err != nil {
			return fmt.Errorf("failed to start poll: %w", err)
		}
		return nil
	})
}

// mutate refreshes the poll's expiry (failing if it is gone), applies write,
// and returns the aggregate as seen inside the same transaction.
func (s *SQLStore) mutate(ctx context.Context, pollID string, write func(tx *sql.Tx) error) (models.Poll, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE poll SET expires_at = ? WHERE id = ? AND expires_at > ?
	`), s.expiry(now), pollID, now.Unix())
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to refresh poll %s: %w", pollID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to refresh poll %s: %w", pollID, err)
	}
	if n == 0 {
		return models.Poll{}, apperr.NotFound("poll %s not found", pollID)
	}

	if err := write(tx); err != nil {
		return models.Poll{}, err
	}

	poll, err := s.loadPoll(ctx, tx, pollID, now)
	if err != nil {
		return models.Poll{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return poll, nil
}

func (s *SQLStore) loadPoll(ctx context.Context, q querier, pollID string, now time.Time) (models.Poll, error) {
	var poll models.Poll
	var hasStarted int
	err := q.QueryRowContext(ctx, s.rebind(`
		SELECT id, topic, votes_per_voter, admin_id, has_started
		FROM poll
		WHERE id = ? AND expires_at > ?
	`), pollID, now.Unix()).Scan(&poll.ID, &poll.Topic, &poll.VotesPerVoter, &poll.AdminID, &hasStarted)
	if err == sql.ErrNoRows {
		return models.Poll{}, apperr.NotFound("poll %s not found", pollID)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll %s: %w", pollID, err)
	}
	poll.HasStarted = hasStarted != 0

	rows, err := q.QueryContext(ctx, s.rebind(`
		SELECT participant_id, name FROM participant WHERE poll_id = ?
	`), pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	poll.Participants = models.Participants{}
	for rows.Next() {
		var identity, name string
		if err := rows.Scan(&identity, &name); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan participant: %w", err)
		}
		poll.Participants[identity] = name
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read participants: %w", err)
	}
	return poll, nil
}

// PurgeExpired deletes every expired poll and its participants.
// Redis expires keys on its own; SQL needs this sweep.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := s.purgeExpired(ctx, tx, s.now(), "")
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n, nil
}

// purgeExpired removes expired polls, limited to pollID when it is non-empty
func (s *SQLStore) purgeExpired(ctx context.Context, tx *sql.Tx, now time.Time, pollID string) (int64, error) {
	filter := ""
	args := []any{now.Unix()}
	if pollID != "" {
		filter = " AND id = ?"
		args = append(args, pollID)
	}

	_, err := tx.ExecContext(ctx, s.rebind(`
		DELETE FROM participant
		WHERE poll_id IN (SELECT id FROM poll WHERE expires_at <= ?`+filter+`)
	`), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge participants: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM poll WHERE expires_at <= ?`+filter), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge polls: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge polls: %w", err)
	}
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done
func (s *SQLStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.logger.Error("failed to purge expired polls", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("purged expired polls", "count", n)
			}
		}
	}
}
