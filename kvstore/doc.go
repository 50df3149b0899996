// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kvstore adapts key-value backends to a two-operation interface:

	value, err := store.Get(ctx, "data")   // ErrNotFound when absent
	err = store.Put(ctx, "data", value)

Backend faults wrap ErrStore. Store itself is not transactional; callers
that need read-modify-write safety coordinate through package lock.
Backends that can replace a value atomically also implement Swapper:

	ok, err := swapper.CompareAndSwap(ctx, "data", old, value) // old nil: must be absent

# Backends

  - Memory: process-local map, for tests and single-process development
  - SQL: kv_document table on SQLite or PostgreSQL; swaps with UPDATE ... WHERE value = old
  - Redis: GET/SET under the "securevote:" prefix; swaps with a Lua script
*/
package kvstore
