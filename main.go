package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-pick-live/auth"
	"github.com/danielhkuo/quickly-pick-live/cliparse"
	"github.com/danielhkuo/quickly-pick-live/db"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/polls"
	"github.com/danielhkuo/quickly-pick-live/realtime"
	"github.com/danielhkuo/quickly-pick-live/router"
	"github.com/danielhkuo/quickly-pick-live/session"
	"github.com/danielhkuo/quickly-pick-live/store"
)

const janitorInterval = time.Minute

func main() {
	var err error

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect the poll store
	var pollStore store.PollStore
	switch cfg.StoreType {
	case cliparse.StoreRedis:
		redisClient, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		pollStore = store.NewRedisStore(redisClient, cfg.PollDuration, slog.Default())

	case cliparse.StorePostgres, cliparse.StoreSQLite:
		dbConn, err := connectSQL(cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		sqlStore := store.NewSQLStore(dbConn, cfg.StoreType, cfg.PollDuration, slog.Default())
		go sqlStore.RunJanitor(ctx, janitorInterval)
		pollStore = sqlStore
	}

	tokens := auth.NewTokenAuthority(cfg.JWTSecret, cfg.PollDuration)
	svc := polls.NewService(pollStore, tokens, slog.Default())
	gate := session.NewGate(tokens, slog.Default())
	gateway := realtime.NewGateway(svc, gate, slog.Default())
	go gateway.Run(ctx)

	// Create router
	mux := router.NewRouter(svc, gate, gateway)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "store", cfg.StoreType)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Let disconnect handling finish before the store closes
	gateway.Wait()
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return store.ConnectRedis(ctx, store.RedisOptions{
		ConnectionOptions: opts,
		OnClientReady: func(c *redis.Client) {
			slog.Info("Connected to redis", "addr", c.Options().Addr, "db", c.Options().DB)
		},
	})
}

func connectSQL(dialect, url string) (*sql.DB, error) {
	conn, err := db.Open(dialect, url)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("Database schema ready", "dialect", dialect)
	return conn, nil
}
