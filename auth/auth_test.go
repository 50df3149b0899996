// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		salt   string
	}{
		{"standard", "admin-1", "secret-salt"},
		{"empty user id", "", "salt"},
		{"empty salt", "user-456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateAdminKey(tt.userID, tt.salt)

			if key == "" {
				t.Error("GenerateAdminKey() returned empty string")
			}

			// Should be deterministic
			if key2 := GenerateAdminKey(tt.userID, tt.salt); key != key2 {
				t.Error("GenerateAdminKey() is not deterministic")
			}

			if strings.ContainsAny(key, "=+/") {
				t.Errorf("GenerateAdminKey() = %q, want unpadded URL-safe base64", key)
			}
		})
	}

	if GenerateAdminKey("admin-1", "salt") == GenerateAdminKey("admin-2", "salt") {
		t.Error("GenerateAdminKey() produced same key for different users")
	}
	if GenerateAdminKey("admin-1", "salt-a") == GenerateAdminKey("admin-1", "salt-b") {
		t.Error("GenerateAdminKey() produced same key for different salts")
	}
}

func TestValidateAdminKey(t *testing.T) {
	salt := "test-salt"
	userID := "admin-1"
	validKey := GenerateAdminKey(userID, salt)

	tests := []struct {
		name     string
		userID   string
		adminKey string
		salt     string
		wantErr  bool
	}{
		{"valid key", userID, validKey, salt, false},
		{"wrong key", userID, "wrong-key", salt, true},
		{"key for another user", "admin-2", validKey, salt, true},
		{"wrong salt", userID, validKey, "other-salt", true},
		{"empty key", userID, "", salt, true},
		{"empty user", "", validKey, salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.userID, tt.adminKey, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAdminKey) {
				t.Errorf("ValidateAdminKey() error = %v, want ErrInvalidAdminKey", err)
			}
		})
	}
}

func TestSecretsEqual(t *testing.T) {
	tests := []struct {
		name   string
		given  string
		stored string
		want   bool
	}{
		{"match", "12345", "12345", true},
		{"mismatch", "12345", "54321", false},
		{"prefix", "1234", "12345", false},
		{"case sensitive", "Secure", "secure", false},
		{"both empty", "", "", true},
		{"empty given", "", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecretsEqual(tt.given, tt.stored); got != tt.want {
				t.Errorf("SecretsEqual(%q, %q) = %v, want %v", tt.given, tt.stored, got, tt.want)
			}
		})
	}
}
