// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/handlers"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/middleware"
)

func NewRouter(l *ledger.Ledger, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(l, cfg)
	adminHandler := handlers.NewAdminHandler(l, cfg)
	accessHandler := handlers.NewAccessHandler(l, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Access (public)
	mux.HandleFunc("POST /api/init", middleware.WithLogging(accessHandler.Gate))
	mux.HandleFunc("POST /api/login", middleware.WithLogging(accessHandler.Login))

	// Voting (public)
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /api/results", middleware.WithLogging(votingHandler.GetResults))
	mux.HandleFunc("GET /api/sessions", middleware.WithLogging(votingHandler.ListSessions))

	// Admin operations (require X-User-ID and X-Admin-Key)
	mux.HandleFunc("GET /api/data", middleware.WithLogging(adminHandler.GetData))
	mux.HandleFunc("POST /api/user", middleware.WithLogging(adminHandler.UpsertUser))
	mux.HandleFunc("DELETE /api/user/{id}", middleware.WithLogging(adminHandler.DeleteUser))
	mux.HandleFunc("POST /api/session", middleware.WithLogging(adminHandler.UpsertSession))
	mux.HandleFunc("DELETE /api/session/{id}", middleware.WithLogging(adminHandler.DeleteSession))
	mux.HandleFunc("POST /api/config", middleware.WithLogging(adminHandler.UpdateConfig))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("securevote API v1"))
	})

	return mux
}
