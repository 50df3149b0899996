// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/securevote/ledger"
	"github.com/danielhkuo/securevote/models"
	"github.com/danielhkuo/securevote/testutil"
)

func TestCastVote_SingleVoteQuota(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Lunch", 1, []string{u1.ID}, "A", "B")
	optA, optB := sess.Options[0].ID, sess.Options[1].ID

	receipt, err := l.CastVote(context.Background(), sess.ID, optA, u1.ID)
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if receipt.Tallies[optA] != 1 || receipt.Tallies[optB] != 0 {
		t.Errorf("Expected tallies {A:1, B:0}, got %v", receipt.Tallies)
	}
	if receipt.VotesUsed != 1 || receipt.VotesRemaining != 0 {
		t.Errorf("Expected 1 used and 0 remaining, got %d/%d", receipt.VotesUsed, receipt.VotesRemaining)
	}
	if receipt.SessionID != sess.ID {
		t.Errorf("Expected session %s, got %s", sess.ID, receipt.SessionID)
	}

	_, err = l.CastVote(context.Background(), sess.ID, optB, u1.ID)
	if !errors.Is(err, ledger.ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
	}

	tallies, err := l.Tallies(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Tallies() error = %v", err)
	}
	if tallies[optA] != 1 || tallies[optB] != 0 {
		t.Errorf("Expected tallies unchanged {A:1, B:0}, got %v", tallies)
	}
}

func TestCastVote_InactiveSession(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Closed", 3, []string{u1.ID}, "A", "B")

	sess.IsActive = false
	if _, err := l.UpsertSession(context.Background(), sess); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}

	for _, opt := range sess.Options {
		_, err := l.CastVote(context.Background(), sess.ID, opt.ID, u1.ID)
		if !errors.Is(err, ledger.ErrSessionInactive) {
			t.Errorf("Expected ErrSessionInactive for option %s, got %v", opt.Text, err)
		}
	}
}

func TestCastVote_FailuresLeaveStateUnchanged(t *testing.T) {
	l, store := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	outsider := testutil.SeedUser(t, l, "outsider", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Budget", 1, []string{u1.ID}, "Yes", "No")
	inactive := testutil.SeedSession(t, l, "Old", 1, []string{u1.ID}, "Yes")
	inactive.IsActive = false
	if _, err := l.UpsertSession(context.Background(), inactive); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}
	if _, err := l.CastVote(context.Background(), sess.ID, sess.Options[0].ID, u1.ID); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	u2 := testutil.SeedUser(t, l, "u2", models.RoleVoter)
	sess.AllowedUserIDs = append(sess.AllowedUserIDs, u2.ID)
	if _, err := l.UpsertSession(context.Background(), sess); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		optionID  string
		userID    string
		wantErr   error
	}{
		{"unknown session", "missing", sess.Options[0].ID, u1.ID, ledger.ErrSessionNotFound},
		{"inactive session", inactive.ID, inactive.Options[0].ID, u1.ID, ledger.ErrSessionInactive},
		{"not on the list", sess.ID, sess.Options[0].ID, outsider.ID, ledger.ErrNotEligible},
		{"unknown user", sess.ID, sess.Options[0].ID, "ghost", ledger.ErrNotEligible},
		{"quota used up", sess.ID, sess.Options[1].ID, u1.ID, ledger.ErrQuotaExceeded},
		{"unknown option", sess.ID, "missing", u2.ID, ledger.ErrOptionNotFound},
		// inactive wins over ineligible, quota wins over unknown option
		{"check order inactive", inactive.ID, "missing", outsider.ID, ledger.ErrSessionInactive},
		{"check order quota", sess.ID, "missing", u1.ID, ledger.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.StoredDocument(t, store)

			_, err := l.CastVote(context.Background(), tt.sessionID, tt.optionID, tt.userID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if ledger.Retryable(err) {
				t.Errorf("Expected %v to be non-retryable", err)
			}

			if !bytes.Equal(before, testutil.StoredDocument(t, store)) {
				t.Error("Expected stored document to be byte-for-byte unchanged")
			}
		})
	}
}

func TestCastVote_BlockedUserNotEligible(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Blocked", 2, []string{u1.ID}, "A")

	u1.IsBlocked = true
	u1.Password = ""
	if _, err := l.UpsertUser(context.Background(), u1); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	_, err := l.CastVote(context.Background(), sess.ID, sess.Options[0].ID, u1.ID)
	if !errors.Is(err, ledger.ErrNotEligible) {
		t.Errorf("Expected ErrNotEligible, got %v", err)
	}
}

func TestCastVote_MultipleVotesSameOption(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Points", 3, []string{u1.ID}, "A", "B")
	optA := sess.Options[0].ID

	for i := 1; i <= 3; i++ {
		receipt, err := l.CastVote(context.Background(), sess.ID, optA, u1.ID)
		if err != nil {
			t.Fatalf("vote %d: CastVote() error = %v", i, err)
		}
		if receipt.VotesUsed != i || receipt.VotesRemaining != 3-i {
			t.Errorf("vote %d: expected %d used, %d remaining, got %d/%d", i, i, 3-i, receipt.VotesUsed, receipt.VotesRemaining)
		}
		if receipt.Tallies[optA] != i {
			t.Errorf("vote %d: expected tally %d, got %d", i, i, receipt.Tallies[optA])
		}
	}
}

func TestCastVote_ConcurrentDistinctUsers(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)

	const voters = 50
	ids := make([]string, voters)
	for i := range ids {
		ids[i] = testutil.SeedUser(t, l, fmt.Sprintf("voter%02d", i), models.RoleVoter).ID
	}
	sess := testutil.SeedSession(t, l, "Stress", 1, ids, "A", "B")

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var failCount atomic.Int32

	for i, id := range ids {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			opt := sess.Options[i%2].ID
			if _, err := l.CastVote(context.Background(), sess.ID, opt, userID); err != nil {
				failCount.Add(1)
				t.Errorf("voter %d: %v", i, err)
				return
			}
			successCount.Add(1)
		}(i, id)
	}
	wg.Wait()

	if successCount.Load() != voters {
		t.Errorf("Expected %d successes, got %d (failures %d)", voters, successCount.Load(), failCount.Load())
	}

	st, err := l.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	final := st.Sessions[st.FindSession(sess.ID)]
	if final.TotalVotes() != voters {
		t.Errorf("Expected %d total votes, got %d", voters, final.TotalVotes())
	}
	if err := st.CheckInvariants(); err != nil {
		t.Errorf("CheckInvariants() error = %v", err)
	}
}

func TestCastVote_ConcurrentSameUserQuota(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		quota    int
	}{
		{"quota 1", 20, 1},
		{"quota 3", 20, 3},
		{"quota above attempts", 5, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := testutil.SetupTestLedger(t)
			u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
			sess := testutil.SeedSession(t, l, "Race", tt.quota, []string{u1.ID}, "A", "B")

			var wg sync.WaitGroup
			var successCount, quotaCount, contentionCount atomic.Int32

			for i := 0; i < tt.attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := l.CastVote(context.Background(), sess.ID, sess.Options[i%2].ID, u1.ID)
					switch {
					case err == nil:
						successCount.Add(1)
					case errors.Is(err, ledger.ErrQuotaExceeded):
						quotaCount.Add(1)
					case errors.Is(err, ledger.ErrContention):
						contentionCount.Add(1)
					default:
						t.Errorf("Unexpected error: %v", err)
					}
				}(i)
			}
			wg.Wait()

			want := min(tt.attempts, tt.quota)
			if int(successCount.Load()) != want {
				t.Errorf("Expected %d successes, got %d", want, successCount.Load())
			}
			if total := successCount.Load() + quotaCount.Load() + contentionCount.Load(); int(total) != tt.attempts {
				t.Errorf("Expected every attempt accounted for, got %d of %d", total, tt.attempts)
			}

			st, err := l.Snapshot(context.Background())
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			final := st.Sessions[st.FindSession(sess.ID)]
			if final.Used(u1.ID) != int(successCount.Load()) {
				t.Errorf("Expected userVotes %d, got %d", successCount.Load(), final.Used(u1.ID))
			}
			if final.TotalVotes() != int(successCount.Load()) {
				t.Errorf("Expected total %d, got %d", successCount.Load(), final.TotalVotes())
			}
			if err := final.CheckInvariants(); err != nil {
				t.Errorf("CheckInvariants() error = %v", err)
			}
		})
	}
}

func TestTallies(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	sess := testutil.SeedSession(t, l, "Colors", 2, []string{u1.ID}, "Red", "Blue", "Green")

	tallies, err := l.Tallies(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Tallies() error = %v", err)
	}
	if len(tallies) != 3 {
		t.Errorf("Expected 3 options in tallies, got %d", len(tallies))
	}
	for id, n := range tallies {
		if n != 0 {
			t.Errorf("Expected zero count for %s, got %d", id, n)
		}
	}

	if _, err := l.CastVote(context.Background(), sess.ID, sess.Options[2].ID, u1.ID); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	tallies, _ = l.Tallies(context.Background(), sess.ID)
	if tallies[sess.Options[2].ID] != 1 {
		t.Errorf("Expected Green=1, got %v", tallies)
	}

	if _, err := l.Tallies(context.Background(), "missing"); !errors.Is(err, ledger.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	l, _ := testutil.SetupTestLedger(t)
	u1 := testutil.SeedUser(t, l, "u1", models.RoleVoter)
	u2 := testutil.SeedUser(t, l, "u2", models.RoleVoter)
	shared := testutil.SeedSession(t, l, "Shared", 2, []string{u1.ID, u2.ID}, "A", "B")
	testutil.SeedSession(t, l, "Only u2", 1, []string{u2.ID}, "A")

	if _, err := l.CastVote(context.Background(), shared.ID, shared.Options[0].ID, u1.ID); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if _, err := l.CastVote(context.Background(), shared.ID, shared.Options[1].ID, u2.ID); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	views, err := l.Sessions(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 session for u1, got %d", len(views))
	}

	v := views[0]
	if v.Session.ID != shared.ID {
		t.Errorf("Expected session %s, got %s", shared.ID, v.Session.ID)
	}
	if v.VotesUsed != 1 || v.VotesRemaining != 1 {
		t.Errorf("Expected 1 used and 1 remaining, got %d/%d", v.VotesUsed, v.VotesRemaining)
	}
	if _, ok := v.Session.UserVotes[u2.ID]; ok {
		t.Error("Expected other users' consumption to be hidden")
	}
	if v.Session.TotalVotes() != 2 {
		t.Errorf("Expected counts to stay visible, got total %d", v.Session.TotalVotes())
	}

	views, _ = l.Sessions(context.Background(), "nobody")
	if views == nil || len(views) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", views)
	}
}
