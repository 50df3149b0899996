// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin capability keys and secret comparison.

# Admin Keys

Admin keys use HMAC-SHA256 over the user ID:

	adminKey := auth.GenerateAdminKey(userID, salt)
	err := auth.ValidateAdminKey(userID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same user ID and salt always produce the same key, so nothing has to be
stored. A key only proves which user it was issued to; handlers still check
that the user currently holds the admin role.

# Secrets

Passwords and the gate password are stored in plaintext and compared with
SecretsEqual, which runs in constant time.
*/
package auth
