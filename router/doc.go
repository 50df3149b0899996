// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SecureVote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(l, cfg)

# Endpoints

Health:

	GET /health

Access (public):

	POST /api/init  - Site gate password check
	POST /api/login - Log in; admins get X-Admin-Key

Voting (public):

	POST /api/vote                - Cast one vote
	GET  /api/results?sessionId=  - Option counts
	GET  /api/sessions?userId=    - Sessions the user may vote in

Admin (requires X-User-ID and X-Admin-Key):

	GET    /api/data         - Full state, passwords stripped
	POST   /api/user         - Create or update a user
	DELETE /api/user/{id}    - Delete a user
	POST   /api/session      - Create or update a session
	DELETE /api/session/{id} - Delete a session
	POST   /api/config       - Change the gate password

All API routes are wrapped with middleware.WithLogging. CORS and tracing
are applied around the whole mux in main.
*/
package router
