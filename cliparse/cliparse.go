package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store types
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

const (
	defaultPort         = 3000
	defaultRedisURL     = "redis://localhost:6379/0"
	defaultPollDuration = 7200 * time.Second
)

type Config struct {
	Port         int
	StoreType    string
	RedisURL     string
	DatabaseURL  string
	JWTSecret    string
	PollDuration time.Duration
}

// LoadEnvFile loads variables from path (usually .env) without overriding
// ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var pollDurationSecs int

	fs := flag.NewFlagSet("quickly-pick-live", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StoreType, "store", "", "Poll store (redis, postgres or sqlite)")
	fs.StringVar(&cfg.RedisURL, "r", "", "Redis URL")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (postgres/sqlite stores)")
	fs.IntVar(&pollDurationSecs, "poll-duration", 0, "Poll and token lifetime in seconds")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Access token signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.StoreType == "" {
		cfg.StoreType = os.Getenv("STORE_TYPE")
		if cfg.StoreType == "" {
			cfg.StoreType = StoreRedis
		}
	}

	switch cfg.StoreType {
	case StoreRedis:
		if cfg.RedisURL == "" {
			cfg.RedisURL = os.Getenv("REDIS_URL")
		}
		if cfg.RedisURL == "" {
			cfg.RedisURL = defaultRedisURL
		}
	case StorePostgres, StoreSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		}
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for SQL stores (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	if pollDurationSecs == 0 {
		if raw := os.Getenv("POLL_DURATION"); raw != "" {
			secs, err := strconv.Atoi(raw)
			if err != nil {
				return Config{}, errors.New("invalid POLL_DURATION env variable")
			}
			pollDurationSecs = secs
		}
	}
	if pollDurationSecs < 0 {
		return Config{}, errors.New("poll duration must be positive")
	}
	cfg.PollDuration = defaultPollDuration
	if pollDurationSecs > 0 {
		cfg.PollDuration = time.Duration(pollDurationSecs) * time.Second
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}
