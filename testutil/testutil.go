// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/securevote/auth"
	"github.com/danielhkuo/securevote/cliparse"
	"github.com/danielhkuo/securevote/kvstore"
	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/lock"
	"github.com/danielhkuo/securevote/models"
	"github.com/danielhkuo/securevote/state"
)

// TestGatePassword is the gate password of every test ledger
const TestGatePassword = "test-gate"

// TestAdminPassword is the bootstrap admin password of every test ledger
const TestAdminPassword = "test-admin-pw"

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   3318,
		StoreBackend:           cliparse.StoreMemory,
		LockBackend:            cliparse.LockLocal,
		LockWait:               2 * time.Second,
		MaxRetries:             3,
		StateKey:               state.DefaultKey,
		AdminKeySalt:           "test-admin-salt",
		StartPassword:          TestGatePassword,
		BootstrapAdminPassword: TestAdminPassword,
	}
}

// SetupTestLedger builds a bootstrapped ledger over an in-memory store.
// The store is returned so tests can inspect or break it.
func SetupTestLedger(t *testing.T) (*ledger.Ledger, *kvstore.Memory) {
	t.Helper()
	return SetupTestLedgerWith(t, lock.NewLocal(), ledger.Options{})
}

// SetupTestLedgerWith is SetupTestLedger with a caller-supplied locker and options
func SetupTestLedgerWith(t *testing.T, locker lock.Locker, opts ledger.Options) (*ledger.Ledger, *kvstore.Memory) {
	t.Helper()

	cfg := GetTestConfig()
	store := kvstore.NewMemory()
	repo := state.NewRepository(store, cfg.StateKey, state.Defaults{
		StartPassword: cfg.StartPassword,
		AdminPassword: cfg.BootstrapAdminPassword,
	})
	if opts.MaxRetries == 0 {
		opts.MaxRetries = cfg.MaxRetries
	}

	l := ledger.New(repo, locker, opts)
	if err := l.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Failed to bootstrap ledger: %v", err)
	}
	return l, store
}

// SeedUser creates a user with password "pw-<username>"
func SeedUser(t *testing.T, l *ledger.Ledger, username string, role models.Role) models.User {
	t.Helper()

	u, err := l.UpsertUser(context.Background(), models.User{
		Username:     username,
		Password:     "pw-" + username,
		Role:         role,
		VotesAllowed: 3,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return u
}

// SeedSession creates an active session with one option per label
func SeedSession(t *testing.T, l *ledger.Ledger, title string, votesPerUser int, allowed []string, labels ...string) models.Session {
	t.Helper()

	opts := make([]models.VoteOption, len(labels))
	for i, label := range labels {
		opts[i] = models.VoteOption{Text: label}
	}
	s, err := l.UpsertSession(context.Background(), models.Session{
		Title:          title,
		Options:        opts,
		AllowedUserIDs: allowed,
		VotesPerUser:   votesPerUser,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("Failed to seed session %s: %v", title, err)
	}
	return s
}

// StoredDocument returns the raw bytes under the state key
func StoredDocument(t *testing.T, store kvstore.Store) []byte {
	t.Helper()

	data, err := store.Get(context.Background(), state.DefaultKey)
	if err != nil {
		t.Fatalf("Failed to read stored document: %v", err)
	}
	return data
}

// AdminHeaders returns the capability headers for an admin user
func AdminHeaders(cfg cliparse.Config, userID string) map[string]string {
	return map[string]string{
		"X-User-ID":   userID,
		"X-Admin-Key": auth.GenerateAdminKey(userID, cfg.AdminKeySalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode decodes an error body and checks its code
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q (%s)", code, resp.Code, resp.Message)
	}
}
