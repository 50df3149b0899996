// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lock provides named mutual exclusion for read-modify-write cycles
over the stored state document.

	release, err := locker.Lock(ctx, "data")
	if err != nil {
		// errors.Is(err, lock.ErrNotAcquired)
	}
	defer release()

Bound the wait with the context deadline; Lock never queues past it.

# Implementations

  - Local: one semaphore per key; correct when a single process owns the store
  - Redis: SET NX PX lease with a token-checked release script
  - Postgres: pg_try_advisory_lock on a pinned pgx connection

Use Redis or Postgres when several server processes share one store.
Redis implements Leaser: a holder must finish within TTL or lose the lease.
*/
package lock
