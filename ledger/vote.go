// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/securevote/models"
)

// CastVote records one vote by userID for optionID in sessionID. Checks run
// in order: session exists, session active, user eligible, quota left,
// option exists. The returned tallies include the new vote.
func (l *Ledger) CastVote(ctx context.Context, sessionID, optionID, userID string) (models.VoteResponse, error) {
	var receipt models.VoteResponse

	_, err := l.Mutate(ctx, "cast_vote", func(st *models.AppState) error {
		i := st.FindSession(sessionID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		sess := &st.Sessions[i]

		if !sess.IsActive {
			return ErrSessionInactive
		}
		if !eligible(st, sess, userID) {
			return ErrNotEligible
		}

		used := sess.Used(userID)
		if used >= sess.VotesPerUser {
			return fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded, used, sess.VotesPerUser)
		}

		j := sess.FindOption(optionID)
		if j < 0 {
			return fmt.Errorf("%w: %s", ErrOptionNotFound, optionID)
		}

		sess.Options[j].Count++
		sess.UserVotes[userID] = used + 1

		receipt = models.VoteResponse{
			SessionID:      sess.ID,
			Tallies:        sess.Tallies(),
			VotesUsed:      used + 1,
			VotesRemaining: sess.Remaining(userID),
		}
		return nil
	})
	if err != nil {
		return models.VoteResponse{}, err
	}

	slog.Info("vote recorded", "session_id", sessionID, "option_id", optionID, "user_id", userID, "votes_used", receipt.VotesUsed)
	return receipt, nil
}

// eligible requires the user to be listed on the session, to still exist,
// and to not be blocked.
func eligible(st *models.AppState, sess *models.Session, userID string) bool {
	if !sess.IsAllowed(userID) {
		return false
	}
	i := st.FindUser(userID)
	return i >= 0 && !st.Users[i].IsBlocked
}

// Tallies returns the option counts of the latest saved state. It does not
// wait for in-flight mutations.
func (l *Ledger) Tallies(ctx context.Context, sessionID string) (map[string]int, error) {
	st, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	i := st.FindSession(sessionID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return st.Sessions[i].Tallies(), nil
}

// Sessions lists the sessions userID may vote in, in stored order. Other
// users' consumption is left out.
func (l *Ledger) Sessions(ctx context.Context, userID string) ([]models.SessionView, error) {
	st, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	views := []models.SessionView{}
	for _, sess := range st.Sessions {
		if !sess.IsAllowed(userID) {
			continue
		}
		used := sess.Used(userID)
		sess.UserVotes = map[string]int{}
		if used > 0 {
			sess.UserVotes[userID] = used
		}
		views = append(views, models.SessionView{
			Session:        sess,
			VotesUsed:      used,
			VotesRemaining: sess.Remaining(userID),
		})
	}
	return views, nil
}
