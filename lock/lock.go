// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lock

import (
	"context"
	"errors"
	"time"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Release gives the lock back. Calling it more than once is a no-op.
type Release func()

// Locker is a named mutual-exclusion domain.
type Locker interface {
	// Lock blocks until key is held or ctx is done, in which case it
	// returns an error wrapping ErrNotAcquired.
	Lock(ctx context.Context, key string) (Release, error)
}

// Leaser is implemented by lockers whose hold expires on its own after TTL.
type Leaser interface {
	TTL() time.Duration
}

// defaultRetry is how often the remote lockers poll a held lock.
const defaultRetry = 25 * time.Millisecond

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
