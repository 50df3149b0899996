// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

The whole application state is one aggregate, persisted as a single document:

  - AppState: config, users, sessions
  - User: account with role, default allowance and last-seen tracking
  - Session: a vote with ordered options, eligible users, per-user quota
    and the per-user consumption map
  - VoteOption: option text and running count

JSON field names are camelCase to match the stored document layout:

	{"config": {"startPassword": "..."}, "users": [...], "sessions": [...]}

# Roles

Role is a closed tag with two values:

	RoleAdmin = "admin"
	RoleVoter = "voter"

Older documents that used "user" for voters decode to RoleVoter.

# Invariants

Session.CheckInvariants verifies that no user consumed more than the
session quota and that the option counts add up to the consumed votes.
Helpers such as Used, Remaining and Tallies treat a missing userVotes
entry as zero.

# Request and Response Types

  - CastVoteRequest: sessionId, optionId, userId
  - LoginRequest: username, password
  - GateRequest: password
  - VoteResponse: sessionId, tallies, votesUsed, votesRemaining
  - SessionView: a session with the caller's consumption
  - ErrorResponse: error, code, message
*/
package models
