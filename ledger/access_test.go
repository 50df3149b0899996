// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/lock"
	"github.com/danielhkuo/securevote/models"
	"github.com/danielhkuo/securevote/state"
	"github.com/danielhkuo/securevote/testutil"
)

func TestLogin(t *testing.T) {
	l, _ := testutil.SetupTestLedgerWith(t, lock.NewLocal(), ledger.Options{Now: fixedClock})

	u, err := l.Login(context.Background(), "admin", testutil.TestAdminPassword, ledger.Origin{IP: "203.0.113.5", Location: "Austin, US"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.ID != state.BootstrapAdminID || !u.IsAdmin() {
		t.Errorf("Expected bootstrap admin, got %+v", u)
	}
	if u.Password != "" {
		t.Error("Expected password to be stripped")
	}
	if u.IP != "203.0.113.5" || u.Location != "Austin, US" {
		t.Errorf("Expected origin recorded, got %q %q", u.IP, u.Location)
	}
	if u.LastSeen != fixedNow.UnixMilli() {
		t.Errorf("Expected lastSeen %d, got %d", fixedNow.UnixMilli(), u.LastSeen)
	}

	// Tracking is persisted
	st, _ := l.Snapshot(context.Background())
	stored := st.Users[st.FindUser(u.ID)]
	if stored.IP != "203.0.113.5" || stored.LastSeen != fixedNow.UnixMilli() {
		t.Errorf("Expected tracking persisted, got %+v", stored)
	}
}

func TestLogin_UnknownOrigin(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	testutil.SeedUser(t, l, "dana", models.RoleVoter)

	u, err := l.Login(context.Background(), "dana", "pw-dana", ledger.Origin{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.IP != "unknown" || u.Location != "unknown" {
		t.Errorf("Expected unknown origin, got %q %q", u.IP, u.Location)
	}
	if u.Role != models.RoleVoter {
		t.Errorf("Expected voter role, got %q", u.Role)
	}
}

func TestLogin_Failures(t *testing.T) {
	l, store := testutil.SetupTestLedger(t)
	blocked := testutil.SeedUser(t, l, "blocked", models.RoleVoter)
	blocked.IsBlocked = true
	blocked.Password = ""
	if _, err := l.UpsertUser(context.Background(), blocked); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"unknown user", "nobody", testutil.TestAdminPassword},
		{"blocked user", "blocked", "pw-blocked"},
		{"empty password", "admin", ""},
		{"empty username", "", testutil.TestAdminPassword},
		{"case mismatch", "Admin", testutil.TestAdminPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.StoredDocument(t, store)

			_, err := l.Login(context.Background(), tt.username, tt.password, ledger.Origin{IP: "1.1.1.1"})
			if !errors.Is(err, ledger.ErrInvalidCredentials) {
				t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
			}
			if !bytes.Equal(before, testutil.StoredDocument(t, store)) {
				t.Error("Expected failed login to leave the document unchanged")
			}
		})
	}
}

func TestCheckGate(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)

	if err := l.CheckGate(context.Background(), testutil.TestGatePassword); err != nil {
		t.Errorf("Expected gate password to pass, got %v", err)
	}

	// Every mismatch fails the same way, whatever the input resembles
	for _, pw := range []string{"", "wrong", "admin", testutil.TestAdminPassword, state.BootstrapAdminID} {
		if err := l.CheckGate(context.Background(), pw); !errors.Is(err, ledger.ErrInvalidCredentials) {
			t.Errorf("CheckGate(%q) = %v, want ErrInvalidCredentials", pw, err)
		}
	}
}

func TestAuthorize(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	voter := testutil.SeedUser(t, l, "voter", models.RoleVoter)
	blockedAdmin := testutil.SeedUser(t, l, "blocked-admin", models.RoleAdmin)
	blockedAdmin.IsBlocked = true
	blockedAdmin.Password = ""
	if _, err := l.UpsertUser(context.Background(), blockedAdmin); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	u, err := l.Authorize(context.Background(), state.BootstrapAdminID)
	if err != nil {
		t.Fatalf("Authorize(admin) error = %v", err)
	}
	if u.Password != "" {
		t.Error("Expected password to be stripped")
	}

	for _, id := range []string{voter.ID, blockedAdmin.ID, "ghost", ""} {
		if _, err := l.Authorize(context.Background(), id); !errors.Is(err, ledger.ErrForbidden) {
			t.Errorf("Authorize(%q) = %v, want ErrForbidden", id, err)
		}
	}
}
