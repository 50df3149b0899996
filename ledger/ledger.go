// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/securevote/lock"
	"github.com/danielhkuo/securevote/models"
	"github.com/danielhkuo/securevote/state"
)

var tracer = otel.Tracer("github.com/danielhkuo/securevote/ledger")

type Options struct {
	// LockWait bounds how long a mutation waits for the state lock.
	LockWait time.Duration
	// OpTimeout bounds the load-mutate-save span once the lock is held.
	// New lowers it to half the lease when it would outlive a lock.Leaser.
	OpTimeout time.Duration
	// MaxRetries is how many times a mutation is re-run after a revision
	// conflict before failing with ErrContention.
	MaxRetries int
	// Now stamps createdAt and lastSeen. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.LockWait <= 0 {
		o.LockWait = 2 * time.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 5 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Ledger owns every read and write of the application state.
type Ledger struct {
	repo   *state.Repository
	locker lock.Locker
	opts   Options
}

func New(repo *state.Repository, locker lock.Locker, opts Options) *Ledger {
	opts = opts.withDefaults()
	if leaser, ok := locker.(lock.Leaser); ok && opts.OpTimeout >= leaser.TTL() {
		slog.Warn("op timeout outlives the lock lease, lowering it", "op_timeout", opts.OpTimeout, "lease", leaser.TTL())
		opts.OpTimeout = leaser.TTL() / 2
	}
	return &Ledger{
		repo:   repo,
		locker: locker,
		opts:   opts,
	}
}

// OpTimeout reports how long a mutation may hold the state lock.
func (l *Ledger) OpTimeout() time.Duration {
	return l.opts.OpTimeout
}

// Bootstrap persists the default state when no document exists yet.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	return l.critical(ctx, "bootstrap", func(ctx context.Context) error {
		snap, err := l.repo.Load(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStore, err)
		}
		if snap.Exists {
			return nil
		}
		if _, err := l.repo.Save(ctx, snap.State, 0); err != nil {
			return fmt.Errorf("%w: %w", ErrContention, err)
		}
		slog.Info("state initialized", "key", l.repo.Key())
		return nil
	})
}

// Mutate runs fn against the current state inside the critical section and
// saves the result. When fn returns an error nothing is written and the
// error is returned as is. A revision conflict re-runs fn on fresh state,
// up to Options.MaxRetries times.
func (l *Ledger) Mutate(ctx context.Context, op string, fn func(*models.AppState) error) (models.AppState, error) {
	var result models.AppState
	err := l.critical(ctx, op, func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			snap, err := l.repo.Load(ctx)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrStore, err)
			}

			st := snap.State
			if err := fn(&st); err != nil {
				return err
			}

			_, err = l.repo.Save(ctx, st, snap.Revision)
			if err == nil {
				result = st
				return nil
			}
			if errors.Is(err, state.ErrConflict) && attempt < l.opts.MaxRetries {
				slog.Warn("state revision conflict, retrying", "op", op, "attempt", attempt+1, "error", err)
				continue
			}
			return fmt.Errorf("%w: %w", ErrContention, err)
		}
	})
	if err != nil {
		return models.AppState{}, err
	}
	return result, nil
}

// critical holds the state lock for the duration of fn.
func (l *Ledger) critical(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "ledger."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("state.key", l.repo.Key())),
	)
	defer span.End()

	lockCtx, cancel := context.WithTimeout(ctx, l.opts.LockWait)
	release, err := l.locker.Lock(lockCtx, l.repo.Key())
	cancel()
	if err != nil {
		slog.Warn("state lock not acquired", "op", op, "error", err)
		err = fmt.Errorf("%w: %w", ErrContention, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer release()

	opCtx, cancel := context.WithTimeout(ctx, l.opts.OpTimeout)
	defer cancel()

	if err := fn(opCtx); err != nil {
		span.RecordError(err)
		if Retryable(err) {
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	return nil
}

// Snapshot returns the most recently saved state without taking the lock.
func (l *Ledger) Snapshot(ctx context.Context) (models.AppState, error) {
	snap, err := l.repo.Load(ctx)
	if err != nil {
		return models.AppState{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return snap.State, nil
}

func (l *Ledger) nowMillis() int64 {
	return l.opts.Now().UnixMilli()
}
