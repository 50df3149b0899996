// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the vote ledger and quota engine. It is the only writer of
the application state.

# Critical Section

Every mutation (votes, user and session edits, logins, config changes) runs
through Mutate:

	lock(state key) -> load -> fn(&state) -> save -> unlock

The lock wait is bounded by Options.LockWait; failing to acquire returns
ErrContention instead of queuing. If fn returns an error nothing is saved.
The repository re-checks the stored revision before writing; a mismatch
means some writer bypassed the lock, and the whole cycle is re-run up to
Options.MaxRetries times before failing with ErrContention. A failed write
after validation is also ErrContention, so callers know a retry is safe.

Reads (Tallies, Sessions, Snapshot, CheckGate, Authorize) load without the
lock and may be slightly stale.

# Voting

	receipt, err := l.CastVote(ctx, sessionID, optionID, userID)

Failures, in check order: ErrSessionNotFound, ErrSessionInactive,
ErrNotEligible, ErrQuotaExceeded, ErrOptionNotFound. For any set of
concurrent calls, no user exceeds the session quota and the option counts
add up to the number of successful calls.

# Administration

UpsertUser, DeleteUser, UpsertSession, DeleteSession and SetGatePassword
reject malformed input with ErrValidation. At least one active admin always
remains. Option counts and per-user consumption cannot be edited.

# Startup

Bootstrap writes the default document (see package state) when the store is
empty. Call it once before serving.
*/
package ledger
