// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Lock backends
const (
	LockLocal    = "local"
	LockRedis    = "redis"
	LockPostgres = "postgres"
)

type Config struct {
	Port         int
	StoreBackend string
	DatabaseURL  string
	RedisAddr    string
	RedisPass    string

	LockBackend string
	LockWait    time.Duration
	LockTTL     time.Duration
	OpTimeout   time.Duration
	MaxRetries  int
	StateKey    string

	// SingleInstance allows the local lock on a shared store.
	SingleInstance bool

	AdminKeySalt           string
	StartPassword          string
	BootstrapAdminPassword string

	LogLevel string
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file (or the one named by -env-file) is loaded first; variables
// already set in the environment win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string
	var lockWait, lockTTL, opTimeout string

	flags := flag.NewFlagSet("securevote", flag.ContinueOnError)

	flags.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.StoreBackend, "t", "", "Store backend (memory, sqlite, postgres or redis)")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for sqlite or postgres")
	flags.StringVar(&cfg.RedisAddr, "redis", "", "Redis address")
	flags.StringVar(&cfg.LockBackend, "lock", "", "Lock backend (local, redis or postgres)")
	flags.StringVar(&lockWait, "lock-wait", "", "Max wait for the state lock")
	flags.StringVar(&lockTTL, "lock-ttl", "", "Lease TTL for remote locks")
	flags.StringVar(&opTimeout, "op-timeout", "", "Max time a mutation may hold the state lock")
	flags.BoolVar(&cfg.SingleInstance, "single-instance", false, "Allow the local lock with a shared store")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	cfg.StoreBackend = firstNonEmpty(cfg.StoreBackend, os.Getenv("STORE_BACKEND"), StoreSQLite)
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	cfg.RedisAddr = firstNonEmpty(cfg.RedisAddr, os.Getenv("REDIS_ADDR"))
	cfg.RedisPass = os.Getenv("REDIS_PASSWORD")

	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("redis address required (use -redis or REDIS_ADDR env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if !cfg.SingleInstance {
		cfg.SingleInstance, _ = strconv.ParseBool(os.Getenv("SINGLE_INSTANCE"))
	}

	cfg.LockBackend = firstNonEmpty(cfg.LockBackend, os.Getenv("LOCK_BACKEND"), defaultLock(cfg.StoreBackend))
	switch cfg.LockBackend {
	case LockLocal:
		if shared(cfg.StoreBackend) && !cfg.SingleInstance {
			return Config{}, fmt.Errorf("local lock cannot guard the shared %s store (use -lock %s or set SINGLE_INSTANCE=true)",
				cfg.StoreBackend, defaultLock(cfg.StoreBackend))
		}
	case LockRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("redis lock requires REDIS_ADDR")
		}
	case LockPostgres:
		if cfg.StoreBackend != StorePostgres {
			return Config{}, errors.New("postgres lock requires the postgres store backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}

	var err error
	if cfg.LockWait, err = parseDuration("LOCK_WAIT", firstNonEmpty(lockWait, os.Getenv("LOCK_WAIT")), 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LockTTL, err = parseDuration("LOCK_TTL", firstNonEmpty(lockTTL, os.Getenv("LOCK_TTL")), 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.OpTimeout, err = parseDuration("OP_TIMEOUT", firstNonEmpty(opTimeout, os.Getenv("OP_TIMEOUT")), cfg.LockTTL/2); err != nil {
		return Config{}, err
	}
	if cfg.LockTTL <= cfg.OpTimeout {
		return Config{}, fmt.Errorf("LOCK_TTL (%v) must be longer than OP_TIMEOUT (%v)", cfg.LockTTL, cfg.OpTimeout)
	}
	if cfg.MaxRetries, err = envInt("MAX_RETRIES", 3); err != nil {
		return Config{}, err
	}
	cfg.StateKey = firstNonEmpty(os.Getenv("STATE_KEY"), "data")

	cfg.StartPassword = os.Getenv("START_PASSWORD")
	cfg.BootstrapAdminPassword = os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	cfg.LogLevel = firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}

// shared reports whether other processes may use the same store.
func shared(store string) bool {
	return store == StorePostgres || store == StoreRedis
}

func defaultLock(store string) string {
	switch store {
	case StorePostgres:
		return LockPostgres
	case StoreRedis:
		return LockRedis
	default:
		return LockLocal
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return value, nil
}

func parseDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s duration %q", name, raw)
	}
	return d, nil
}
