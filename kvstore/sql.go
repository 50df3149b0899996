// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/securevote/db"
)

// SQL stores values in the kv_document table created by db.CreateSchema.
type SQL struct {
	db          *sql.DB
	getQuery    string
	putQuery    string
	insertQuery string
	updateQuery string
}

// NewSQL returns a store for a handle opened with db.DriverSQLite or
// db.DriverPostgres.
func NewSQL(conn *sql.DB, driver string) (*SQL, error) {
	s := &SQL{db: conn}
	switch driver {
	case db.DriverPostgres:
		s.getQuery = `SELECT value FROM kv_document WHERE doc_key = $1`
		s.putQuery = `
			INSERT INTO kv_document (doc_key, value, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (doc_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		s.insertQuery = `
			INSERT INTO kv_document (doc_key, value, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (doc_key) DO NOTHING
		`
		s.updateQuery = `
			UPDATE kv_document SET value = $2, updated_at = CURRENT_TIMESTAMP
			WHERE doc_key = $1 AND value = $3
		`
	case db.DriverSQLite:
		s.getQuery = `SELECT value FROM kv_document WHERE doc_key = ?`
		s.putQuery = `
			INSERT INTO kv_document (doc_key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (doc_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		s.insertQuery = `
			INSERT INTO kv_document (doc_key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (doc_key) DO NOTHING
		`
		s.updateQuery = `
			UPDATE kv_document SET value = ?2, updated_at = CURRENT_TIMESTAMP
			WHERE doc_key = ?1 AND value = ?3
		`
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	return s, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrStore, key, err)
	}
	return value, nil
}

func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.putQuery, key, value); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStore, key, err)
	}
	return nil
}

// CompareAndSwap guards the write with the WHERE clause, so a row that
// changed since old was read is left alone.
func (s *SQL) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	var res sql.Result
	var err error
	if old == nil {
		res, err = s.db.ExecContext(ctx, s.insertQuery, key, value)
	} else {
		res, err = s.db.ExecContext(ctx, s.updateQuery, key, value, old)
	}
	if err != nil {
		return false, fmt.Errorf("%w: swap %s: %w", ErrStore, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: swap %s: %w", ErrStore, key, err)
	}
	return n == 1, nil
}
