// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/middleware"
)

// Error codes returned in the "code" field of error bodies
const (
	CodeSessionNotFound    = "session_not_found"
	CodeSessionInactive    = "session_inactive"
	CodeNotEligible        = "not_eligible"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeOptionNotFound     = "option_not_found"
	CodeUserNotFound       = "user_not_found"
	CodeValidation         = "validation"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeContention         = "contention"
	CodeStoreUnavailable   = "store_unavailable"
	CodeInternal           = "internal"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: a save failure wraps both ErrContention and the store cause.
var errorMappings = []errorMapping{
	{ledger.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{ledger.ErrSessionInactive, http.StatusBadRequest, CodeSessionInactive},
	{ledger.ErrNotEligible, http.StatusForbidden, CodeNotEligible},
	{ledger.ErrQuotaExceeded, http.StatusBadRequest, CodeQuotaExceeded},
	{ledger.ErrOptionNotFound, http.StatusBadRequest, CodeOptionNotFound},
	{ledger.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
	{ledger.ErrValidation, http.StatusBadRequest, CodeValidation},
	{ledger.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{ledger.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ledger.ErrContention, http.StatusServiceUnavailable, CodeContention},
	{ledger.ErrStore, http.StatusServiceUnavailable, CodeStoreUnavailable},
}

// writeLedgerError maps a ledger error to its status and code.
// Retryable and unknown errors are logged and get a generic message.
func writeLedgerError(w http.ResponseWriter, op string, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := err.Error()
		if ledger.Retryable(err) {
			slog.Warn("request failed, client may retry", "op", op, "error", err)
			msg = "Service busy, please retry"
		}
		middleware.CodedErrorResponse(w, m.status, m.code, msg)
		return
	}

	slog.Error("unexpected ledger error", "op", op, "error", err)
	middleware.CodedErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Internal error")
}
