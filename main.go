// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/db"
	"github.com/danielhkuo/securevote/kvstore"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/lock"
	"github.com/danielhkuo/securevote/middleware"
	"github.com/danielhkuo/securevote/router"
	"github.com/danielhkuo/securevote/state"
	"github.com/danielhkuo/securevote/telemetry"
)

// backend holds the store and locker plus whatever needs closing on exit.
type backend struct {
	store   kvstore.Store
	locker  lock.Locker
	closers []io.Closer
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i].Close()
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))

	shutdownTracing := telemetry.Setup("securevote")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	b, err := openBackend(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("backend setup failed", "store", cfg.StoreBackend, "lock", cfg.LockBackend, "error", err)
		os.Exit(1)
	}
	defer b.Close()

	repo := state.NewRepository(b.store, cfg.StateKey, state.Defaults{
		StartPassword: cfg.StartPassword,
		AdminPassword: cfg.BootstrapAdminPassword,
	})
	l := ledger.New(repo, b.locker, ledger.Options{
		LockWait:   cfg.LockWait,
		OpTimeout:  cfg.OpTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	err = l.Bootstrap(ctx)
	cancel()
	if err != nil {
		slog.Error("state bootstrap failed", "error", err)
		os.Exit(1)
	}
	slog.Info("State ready", "store", cfg.StoreBackend, "lock", cfg.LockBackend, "key", repo.Key())

	// Create router
	mux := router.NewRouter(l, cfg)

	// Create server
	server := http.Server{
		Handler:           otelhttp.NewHandler(middleware.CORS(mux), "securevote"),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openBackend(ctx context.Context, cfg cliparse.Config) (*backend, error) {
	b := &backend{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.StoreBackend == cliparse.StoreRedis || cfg.LockBackend == cliparse.LockRedis {
		client, err := kvstore.NewRedisClient(cfg.RedisAddr, cfg.RedisPass)
		if err != nil {
			return nil, err
		}
		redisClient = client
		b.closers = append(b.closers, client)
	}

	switch cfg.StoreBackend {
	case cliparse.StoreMemory:
		slog.Warn("using in-memory store, state is lost on exit")
		b.store = kvstore.NewMemory()
	case cliparse.StoreSQLite, cliparse.StorePostgres:
		driver := db.DriverSQLite
		if cfg.StoreBackend == cliparse.StorePostgres {
			driver = db.DriverPostgres
		}
		conn, err := db.Open(ctx, driver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, conn)
		if err := db.CreateSchema(ctx, conn); err != nil {
			return nil, err
		}
		slog.Info("Database schema ready", "driver", driver)
		store, err := kvstore.NewSQL(conn, driver)
		if err != nil {
			return nil, err
		}
		b.store = store
	case cliparse.StoreRedis:
		b.store = kvstore.NewRedis(redisClient)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	switch cfg.LockBackend {
	case cliparse.LockLocal:
		b.locker = lock.NewLocal()
	case cliparse.LockRedis:
		b.locker = lock.NewRedis(redisClient, cfg.LockTTL)
	case cliparse.LockPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open lock pool: %w", err)
		}
		b.closers = append(b.closers, closerFunc(pool.Close))
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping lock pool: %w", err)
		}
		b.locker = lock.NewPostgres(pool)
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}

	ok = true
	return b, nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
