// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and creates the schema for the SQL poll store.

Redis is the default poll store; PostgreSQL (lib/pq) and sqlite (modernc) are
supported for deployments that already run a database.

# Connecting

	conn, err := db.Open(db.DialectPostgres, cfg.DatabaseURL)
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

sqlite connections are limited to one open connection.

# Tables

  - poll: one row per poll, expires_at in unix seconds
  - participant: one row per (poll_id, participant_id)

	poll 1──* participant

A participant row is the unit of concurrent mutation, so joins and leaves
on the same poll never overwrite each other.
*/
package db
