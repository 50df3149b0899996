// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /api/vote", middleware.WithLogging(handler))

Logs request start at debug level and completion with the response status
and duration_ms. Responses with a 5xx status are logged at error level.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, X-User-ID, X-Admin-Key. X-Admin-Key and Retry-After are
exposed to browser clients.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.CodedErrorResponse(w, http.StatusForbidden, "not_eligible", "message")

A 503 error response also carries Retry-After: 1.

Parse JSON request bodies (capped at 1 MiB):

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, "validation", "Invalid JSON")
		return
	}

# Client Origin

GetClientIP returns the original client IP (CF-Connecting-IP,
X-Forwarded-For, X-Real-IP, then RemoteAddr). GetClientLocation reads
CDN geo headers. Both feed the user last-seen tracking on login.
*/
package middleware
