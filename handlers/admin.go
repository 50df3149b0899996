// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/securevote/auth"
	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/middleware"
	"github.com/danielhkuo/securevote/models"
)

type AdminHandler struct {
	ledger *ledger.Ledger
	cfg    cliparse.Config
}

func NewAdminHandler(l *ledger.Ledger, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{ledger: l, cfg: cfg}
}

// requireAdmin checks the X-User-ID / X-Admin-Key pair and that the user
// is still an unblocked admin. It writes the error response itself.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(userID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid admin key")
		return "", false
	}

	if _, err := h.ledger.Authorize(r.Context(), userID); err != nil {
		writeLedgerError(w, "authorize", err)
		return "", false
	}
	return userID, true
}

// GetData handles GET /api/data
// Passwords are stripped from the returned state.
func (h *AdminHandler) GetData(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	st, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeLedgerError(w, "get_data", err)
		return
	}
	for i := range st.Users {
		st.Users[i] = st.Users[i].Public()
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// UpsertUser handles POST /api/user
func (h *AdminHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req models.User
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	user, err := h.ledger.UpsertUser(r.Context(), req)
	if err != nil {
		writeLedgerError(w, "upsert_user", err)
		return
	}

	slog.Debug("user upserted by admin", "actor_id", actorID, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, user.Public())
}

// DeleteUser handles DELETE /api/user/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	userID := r.PathValue("id")
	if userID == "" {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "user id is required")
		return
	}

	if err := h.ledger.DeleteUser(r.Context(), actorID, userID); err != nil {
		writeLedgerError(w, "delete_user", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// UpsertSession handles POST /api/session
func (h *AdminHandler) UpsertSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req models.Session
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	sess, err := h.ledger.UpsertSession(r.Context(), req)
	if err != nil {
		writeLedgerError(w, "upsert_session", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/session/{id}
func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "session id is required")
		return
	}

	if err := h.ledger.DeleteSession(r.Context(), sessionID); err != nil {
		writeLedgerError(w, "delete_session", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// UpdateConfig handles POST /api/config
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req models.UpdateConfigRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	if err := h.ledger.SetGatePassword(r.Context(), req.StartPassword); err != nil {
		writeLedgerError(w, "update_config", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}
