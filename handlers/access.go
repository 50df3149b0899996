// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/securevote/auth"
	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/middleware"
	"github.com/danielhkuo/securevote/models"
)

type AccessHandler struct {
	ledger *ledger.Ledger
	cfg    cliparse.Config
}

func NewAccessHandler(l *ledger.Ledger, cfg cliparse.Config) *AccessHandler {
	return &AccessHandler{ledger: l, cfg: cfg}
}

// Login handles POST /api/login
// Admins also receive their capability key in the X-Admin-Key header.
func (h *AccessHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	origin := ledger.Origin{
		IP:       middleware.GetClientIP(r),
		Location: middleware.GetClientLocation(r),
	}
	user, err := h.ledger.Login(r.Context(), req.Username, req.Password, origin)
	if errors.Is(err, ledger.ErrInvalidCredentials) {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
		return
	}
	if err != nil {
		writeLedgerError(w, "login", err)
		return
	}

	if user.IsAdmin() {
		w.Header().Set("X-Admin-Key", auth.GenerateAdminKey(user.ID, h.cfg.AdminKeySalt))
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// Gate handles POST /api/init
// Every wrong password gets the same 401 body.
func (h *AccessHandler) Gate(w http.ResponseWriter, r *http.Request) {
	var req models.GateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	err := h.ledger.CheckGate(r.Context(), req.Password)
	if errors.Is(err, ledger.ErrInvalidCredentials) {
		middleware.CodedErrorResponse(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid password")
		return
	}
	if err != nil {
		writeLedgerError(w, "gate", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}
