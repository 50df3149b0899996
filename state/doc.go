// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package state loads and saves the application state as one JSON document
under one store key.

	snap, err := repo.Load(ctx)
	// mutate snap.State
	rev, err := repo.Save(ctx, snap.State, snap.Revision)

Every write replaces the whole document and bumps its revision. Save
refuses to write when the stored revision is not the one the caller
loaded (ErrConflict). On stores implementing kvstore.Swapper the write is
a compare-and-swap against the bytes just read, so a writer that lands in
between also yields ErrConflict instead of being overwritten. Callers serialize Load/Save cycles with package lock;
package ledger does this for every mutation.

When no document exists, Load returns the deterministic default state
(bootstrap admin "admin", gate password "secure-start") without writing it.
The first successful Save, normally ledger.Bootstrap at startup, persists it.
*/
package state
