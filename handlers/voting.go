// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/middleware"
	"github.com/danielhkuo/securevote/models"
)

type VotingHandler struct {
	ledger *ledger.Ledger
	cfg    cliparse.Config
}

func NewVotingHandler(l *ledger.Ledger, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{ledger: l, cfg: cfg}
}

// CastVote handles POST /api/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	switch {
	case req.SessionID == "":
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "sessionId is required")
		return
	case req.OptionID == "":
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "optionId is required")
		return
	case req.UserID == "":
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "userId is required")
		return
	}

	receipt, err := h.ledger.CastVote(r.Context(), req.SessionID, req.OptionID, req.UserID)
	if err != nil {
		writeLedgerError(w, "cast_vote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, receipt)
}

// GetResults handles GET /api/results?sessionId=
func (h *VotingHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "sessionId is required")
		return
	}

	tallies, err := h.ledger.Tallies(r.Context(), sessionID)
	if err != nil {
		writeLedgerError(w, "get_results", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tallies)
}

// ListSessions handles GET /api/sessions?userId=
func (h *VotingHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "userId is required")
		return
	}

	views, err := h.ledger.Sessions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, "list_sessions", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, views)
}
