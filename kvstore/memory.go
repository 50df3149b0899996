// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory keeps values in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// failPuts makes every Put fail; see SetFailPuts.
	failPuts bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts {
		return fmt.Errorf("%w: write rejected", ErrStore)
	}
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *Memory) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts {
		return false, fmt.Errorf("%w: write rejected", ErrStore)
	}
	cur, ok := m.data[key]
	if old == nil && ok || old != nil && (!ok || !bytes.Equal(cur, old)) {
		return false, nil
	}
	m.data[key] = slices.Clone(value)
	return true, nil
}

// SetFailPuts toggles simulated write failures.
func (m *Memory) SetFailPuts(fail bool) {
	m.mu.Lock()
	m.failPuts = fail
	m.mu.Unlock()
}
