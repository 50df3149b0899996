// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SecureVote API server.

SecureVote runs small closed votes: an admin creates sessions with a list
of eligible users and a per-user vote quota, and voters spend their votes
on the session's options. The whole application state is one JSON
document in a key-value store; every write goes through a lock so that
concurrent votes are never lost or over-counted.

# Starting the Server

The server reads CLI flags, then environment variables, then a .env file:

	ADMIN_KEY_SALT=... DATABASE_URL=securevote.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt ...

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - DATABASE_URL (-d): for the sqlite and postgres stores
  - REDIS_ADDR (-redis): for the redis store or lock

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - STORE_BACKEND (-t): memory, sqlite (default), postgres, redis
  - LOCK_BACKEND (-lock): local (default), redis, postgres
  - LOCK_WAIT (-lock-wait), LOCK_TTL (-lock-ttl), MAX_RETRIES
  - STATE_KEY, START_PASSWORD, BOOTSTRAP_ADMIN_PASSWORD, LOG_LEVEL
  - OTEL_EXPORTER_OTLP_ENDPOINT: enables trace export

Run one process with the local lock, or several processes against a
shared store with the redis or postgres lock.

# Architecture

  - handlers: HTTP request handlers (voting, admin, access)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - ledger: vote and admin operations, the single critical section
  - state: document load/save with revision stamps and first-boot defaults
  - kvstore: memory, SQL and Redis key-value stores
  - lock: local, Redis and Postgres advisory lockers
  - models: domain, request and response types
  - auth: admin capability keys
  - db: schema creation
  - cliparse: configuration parsing
  - telemetry: OpenTelemetry tracing setup

See package documentation for each component.
*/
package main
