// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation for the SQL
store backends.

# Schema Creation

CreateSchema initializes the key-value table:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv_document: one row per key; the application stores its whole state
    under a single key

The same DDL runs on SQLite (modernc.org/sqlite, driver "sqlite") and
PostgreSQL (github.com/lib/pq, driver "postgres"). Drivers are registered by
blank imports in main and in tests.
*/
package db
