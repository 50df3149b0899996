// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SecureVote API.

# Handler Types

Each handler is a struct holding the ledger and config:

  - VotingHandler: vote casting, tallies, and a voter's session list
  - AdminHandler: full state, user and session upserts and deletes, gate password
  - AccessHandler: login and the site-wide gate check

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(l, cfg)

Handlers never touch the store directly; every read and write goes
through ledger.Ledger, which serializes mutations.

# Voting

	POST /api/vote                → CastVote
	GET  /api/results?sessionId=  → GetResults
	GET  /api/sessions?userId=    → ListSessions

# Admin

Admin routes require X-User-ID and X-Admin-Key. The key is issued in the
X-Admin-Key response header when an admin logs in. A bad key gets 401;
a valid key for a user who is no longer an admin gets 403.

	GET    /api/data         → GetData
	POST   /api/user         → UpsertUser
	DELETE /api/user/{id}    → DeleteUser
	POST   /api/session      → UpsertSession
	DELETE /api/session/{id} → DeleteSession
	POST   /api/config       → UpdateConfig

# Errors

Ledger errors map to a status and a machine-readable code:

	session_not_found   404    session_inactive  400
	not_eligible        403    quota_exceeded    400
	option_not_found    400    user_not_found    404
	validation          400    invalid_credentials 401
	forbidden           403    contention        503
	store_unavailable   503

503 responses carry Retry-After: 1 and are safe to retry unchanged.
*/
package handlers
