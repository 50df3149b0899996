// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrStore    = errors.New("store unavailable")
)

// Store is a single-key get/put backend. It promises no transactions and
// no compare-and-swap; a Put from one caller may not be visible to a
// concurrent Get from another.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Swapper is implemented by backends that can replace a value atomically.
type Swapper interface {
	// CompareAndSwap stores value only while key still holds old, or is
	// absent when old is nil. It reports whether the value was stored.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error)
}
