// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "errors"

// Every failed operation leaves the stored state untouched. Callers match
// these with errors.Is; returned errors may wrap them with detail.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionInactive    = errors.New("session is not active")
	ErrNotEligible        = errors.New("user is not eligible for this session")
	ErrQuotaExceeded      = errors.New("vote quota exceeded")
	ErrOptionNotFound     = errors.New("option not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin role required")

	// ErrContention means the write could not be serialized or persisted.
	// Retrying is safe.
	ErrContention = errors.New("concurrent update, retry")
	// ErrStore means the state could not be read.
	ErrStore = errors.New("state store unavailable")
)

// Retryable reports whether a caller may retry the operation unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrContention) || errors.Is(err, ErrStore)
}
