// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists poll aggregates in a store shared by every instance.

# Backends

RedisStore (default) keeps one hash per poll:

	polls:{id}
	  id, topic, votesPerVoter, adminID, hasStarted
	  participants:{identity} -> name

Writes run as Lua scripts that check the key exists, touch exactly one field,
and reset EXPIRE in one atomic step. Redis reclaims expired polls on its own.

SQLStore keeps a poll row and one participant row per identity, on PostgreSQL
or sqlite. Writes refresh poll.expires_at in the same transaction; expired rows
read as absent and are removed by PurgeExpired / RunJanitor.

# Connecting to Redis

	client, err := store.ConnectRedis(ctx, store.RedisOptions{
		ConnectionOptions: opts,
		OnClientReady: func(c *redis.Client) {
			logger.Info("connected to redis", "addr", c.Options().Addr)
		},
	})

OnClientReady runs once, after the first successful ping. Leaving it nil is
the same as NoopClientReady.

# Errors

  - CreatePoll on a live ID: apperr conflict
  - Any operation on a missing or expired poll: apperr not found
  - RemoveParticipant on an absent identity: no error
*/
package store
