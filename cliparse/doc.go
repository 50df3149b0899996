// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A dotenv file is loaded before the environment is read (".env" by default,
missing file ignored). Variables already set in the process environment win
over the file.

# CLI Flags

	-p           Server port
	-t           Store backend: memory, sqlite, postgres, redis
	-d           Database URL (sqlite file or postgres DSN)
	-redis       Redis address
	-lock        Lock backend: local, redis, postgres
	-lock-wait   Max wait for the state lock (e.g. 2s)
	-lock-ttl    Lease TTL for remote locks
	-op-timeout  Max time a mutation may hold the lock
	-single-instance  Allow the local lock with a shared store
	-admin-salt  Admin key salt
	-env-file    Dotenv file

# Environment Variables

	PORT                       → -p (default 3318)
	STORE_BACKEND              → -t (default sqlite)
	DATABASE_URL               → -d
	REDIS_ADDR, REDIS_PASSWORD → -redis
	LOCK_BACKEND               → -lock (default matches the store; local for memory and sqlite)
	LOCK_WAIT, LOCK_TTL        → -lock-wait (2s), -lock-ttl (10s)
	OP_TIMEOUT                 → -op-timeout (default LOCK_TTL/2)
	SINGLE_INSTANCE            → -single-instance
	MAX_RETRIES                  conflict retries (default 3)
	STATE_KEY                    store key of the state document (default "data")
	ADMIN_KEY_SALT             → -admin-salt (required)
	START_PASSWORD               first-boot gate password
	BOOTSTRAP_ADMIN_PASSWORD     first-boot admin password
	LOG_LEVEL                    debug, info, warn, error

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error when the backend named is unknown, when its
address is missing, when the postgres lock is paired with another store,
or when ADMIN_KEY_SALT is missing. The postgres and redis stores are meant
to be shared between processes, so they get the matching remote lock by
default and refuse the local lock unless SINGLE_INSTANCE is set.
LOCK_TTL must be longer than OP_TIMEOUT so a redis lease cannot expire
while a mutation still holds it.
*/
package cliparse
