// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// Hash layout of polls:{id}
const (
	keyPrefix         = "polls:"
	participantPrefix = "participants:"

	fieldID            = "id"
	fieldTopic         = "topic"
	fieldVotesPerVoter = "votesPerVoter"
	fieldAdminID       = "adminID"
	fieldHasStarted    = "hasStarted"
)

// ClientReadyHook runs once after the Redis client answers its first ping
type ClientReadyHook func(client *redis.Client)

// NoopClientReady is used when RedisOptions.OnClientReady is nil
func NoopClientReady(*redis.Client) {}

type RedisOptions struct {
	ConnectionOptions *redis.Options
	OnClientReady     ClientReadyHook
}

// ConnectRedis builds the process-wide Redis client, waits until it is usable,
// then invokes the ready hook exactly once.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.ConnectionOptions == nil {
		return nil, errors.New("redis connection options required")
	}

	client := redis.NewClient(opts.ConnectionOptions)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	hook := opts.OnClientReady
	if hook == nil {
		hook = NoopClientReady
	}
	hook(client)

	return client, nil
}

// Both scripts return 0 when the poll key does not exist.
var (
	createPollScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('EXPIRE', KEYS[1], ARGV[1])
return 1
`)

	// ARGV: ttl, op ("set" | "del"), field, [value]
	// Deletes are skipped once hasStarted is set.
	mutateFieldScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
if ARGV[2] == 'set' then
  redis.call('HSET', KEYS[1], ARGV[3], ARGV[4])
elseif redis.call('HGET', KEYS[1], 'hasStarted') ~= 'true' then
  redis.call('HDEL', KEYS[1], ARGV[3])
end
redis.call('EXPIRE', KEYS[1], ARGV[1])
return redis.call('HGETALL', KEYS[1])
`)
)

// RedisStore keeps each poll in one hash. Every write is a Lua script that
// touches a single field and refreshes the TTL in the same atomic step.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: resolveLogger(logger),
	}
}

func pollKey(pollID string) string {
	return keyPrefix + pollID
}

func (s *RedisStore) ttlSeconds() int64 {
	secs := int64(s.ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (s *RedisStore) CreatePoll(ctx context.Context, poll models.Poll) (models.Poll, error) {
	args := []any{s.ttlSeconds(),
		fieldID, poll.ID,
		fieldTopic, poll.Topic,
		fieldVotesPerVoter, poll.VotesPerVoter,
		fieldAdminID, poll.AdminID,
		fieldHasStarted, strconv.FormatBool(poll.HasStarted),
	}
	for identity, name := range poll.Participants {
		args = append(args, participantPrefix+identity, name)
	}

	created, err := createPollScript.Run(ctx, s.client, []string{pollKey(poll.ID)}, args...).Int64()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to create poll %s: %w", poll.ID, err)
	}
	if created == 0 {
		return models.Poll{}, apperr.Conflict("poll %s already exists", poll.ID)
	}

	s.logger.Debug("poll stored", "poll_id", poll.ID, "ttl_s", s.ttlSeconds())
	return s.GetPoll(ctx, poll.ID)
}

func (s *RedisStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	fields, err := s.client.HGetAll(ctx, pollKey(pollID)).Result()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to get poll %s: %w", pollID, err)
	}
	if len(fields) == 0 {
		return models.Poll{}, apperr.NotFound("poll %s not found", pollID)
	}
	return decodePoll(fields)
}

func (s *RedisStore) AddParticipant(ctx context.Context, pollID, identity, name string) (models.Poll, error) {
	return s.mutateField(ctx, pollID, "set", participantPrefix+identity, name)
}

func (s *RedisStore) RemoveParticipant(ctx context.Context, pollID, identity string) (models.Poll, error) {
	return s.mutateField(ctx, pollID, "del", participantPrefix+identity)
}

func (s *RedisStore) StartPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return s.mutateField(ctx, pollID, "set", fieldHasStarted, "true")
}

func (s *RedisStore) mutateField(ctx context.Context, pollID, op, field string, value ...any) (models.Poll, error) {
	args := append([]any{s.ttlSeconds(), op, field}, value...)

	res, err := mutateFieldScript.Run(ctx, s.client, []string{pollKey(pollID)}, args...).Result()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to update poll %s: %w", pollID, err)
	}

	switch v := res.(type) {
	case int64:
		return models.Poll{}, apperr.NotFound("poll %s not found", pollID)
	case []any:
		fields, err := pairsToMap(v)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to decode poll %s: %w", pollID, err)
		}
		return decodePoll(fields)
	default:
		return models.Poll{}, fmt.Errorf("unexpected script reply %T for poll %s", res, pollID)
	}
}

func pairsToMap(pairs []any) (map[string]string, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("odd number of hash elements")
	}
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok1 := pairs[i].(string)
		v, ok2 := pairs[i+1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("non-string hash element at %d", i)
		}
		out[k] = v
	}
	return out, nil
}

func decodePoll(fields map[string]string) (models.Poll, error) {
	poll := models.Poll{
		ID:           fields[fieldID],
		Topic:        fields[fieldTopic],
		AdminID:      fields[fieldAdminID],
		HasStarted:   fields[fieldHasStarted] == "true",
		Participants: models.Participants{},
	}

	if raw := fields[fieldVotesPerVoter]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Poll{}, fmt.Errorf("invalid votesPerVoter %q: %w", raw, err)
		}
		poll.VotesPerVoter = n
	}

	for k, v := range fields {
		if identity, ok := strings.CutPrefix(k, participantPrefix); ok {
			poll.Participants[identity] = v
		}
	}
	return poll, nil
}
