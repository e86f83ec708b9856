// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - StoreType: redis (default), postgres or sqlite
  - RedisURL: Redis connection URL (default: redis://localhost:6379/0)
  - DatabaseURL: SQL connection string (required for postgres/sqlite)
  - JWTSecret: Secret for access token signing (required)
  - PollDuration: Poll and access token lifetime (default: 2h)

# CLI Flags

	-p             Server port
	-store         Poll store type
	-r             Redis URL
	-d             Database URL
	-jwt-secret    Access token secret
	-poll-duration Poll lifetime in seconds

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	STORE_TYPE    → -store
	REDIS_URL     → -r
	DATABASE_URL  → -d
	JWT_SECRET    → -jwt-secret
	POLL_DURATION → -poll-duration

CLI flags take precedence over environment variables. main calls
LoadEnvFile(".env") first; values already in the environment are not
overridden by the file.

# Example

	// In main.go
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
