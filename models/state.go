// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"slices"
)

// FindUser returns the index of the user with the given id, or -1.
func (s *AppState) FindUser(id string) int {
	return slices.IndexFunc(s.Users, func(u User) bool { return u.ID == id })
}

// FindUsername returns the index of the user with the given username, or -1.
func (s *AppState) FindUsername(username string) int {
	return slices.IndexFunc(s.Users, func(u User) bool { return u.Username == username })
}

// FindSession returns the index of the session with the given id, or -1.
func (s *AppState) FindSession(id string) int {
	return slices.IndexFunc(s.Sessions, func(sess Session) bool { return sess.ID == id })
}

// AdminCount reports how many unblocked users hold RoleAdmin.
func (s *AppState) AdminCount() int {
	n := 0
	for _, u := range s.Users {
		if u.IsAdmin() && !u.IsBlocked {
			n++
		}
	}
	return n
}

// Normalize replaces nil collections so the document always encodes
// arrays and objects rather than null.
func (s *AppState) Normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Sessions == nil {
		s.Sessions = []Session{}
	}
	for i := range s.Sessions {
		s.Sessions[i].normalize()
	}
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := AppState{
		Config:   s.Config,
		Users:    slices.Clone(s.Users),
		Sessions: make([]Session, len(s.Sessions)),
	}
	for i, sess := range s.Sessions {
		out.Sessions[i] = sess.Clone()
	}
	out.Normalize()
	return out
}

// CheckInvariants verifies the quota and tally invariants of every session.
func (s *AppState) CheckInvariants() error {
	for _, sess := range s.Sessions {
		if err := sess.CheckInvariants(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) normalize() {
	if s.Options == nil {
		s.Options = []VoteOption{}
	}
	if s.AllowedUserIDs == nil {
		s.AllowedUserIDs = []string{}
	}
	if s.UserVotes == nil {
		s.UserVotes = map[string]int{}
	}
}

func (s Session) Clone() Session {
	s.Options = slices.Clone(s.Options)
	s.AllowedUserIDs = slices.Clone(s.AllowedUserIDs)
	votes := make(map[string]int, len(s.UserVotes))
	for k, v := range s.UserVotes {
		votes[k] = v
	}
	s.UserVotes = votes
	s.normalize()
	return s
}

// FindOption returns the index of the option with the given id, or -1.
func (s *Session) FindOption(id string) int {
	return slices.IndexFunc(s.Options, func(o VoteOption) bool { return o.ID == id })
}

func (s *Session) IsAllowed(userID string) bool {
	return slices.Contains(s.AllowedUserIDs, userID)
}

// Used is the number of votes the user has consumed; a missing entry means zero.
func (s *Session) Used(userID string) int {
	return s.UserVotes[userID]
}

func (s *Session) Remaining(userID string) int {
	return max(s.VotesPerUser-s.Used(userID), 0)
}

// Tallies maps option id to its current count.
func (s *Session) Tallies() map[string]int {
	out := make(map[string]int, len(s.Options))
	for _, o := range s.Options {
		out[o.ID] = o.Count
	}
	return out
}

func (s *Session) TotalVotes() int {
	total := 0
	for _, o := range s.Options {
		total += o.Count
	}
	return total
}

func (s *Session) CheckInvariants() error {
	consumed := 0
	for userID, used := range s.UserVotes {
		if used < 0 || used > s.VotesPerUser {
			return fmt.Errorf("session %s: user %s consumed %d of %d", s.ID, userID, used, s.VotesPerUser)
		}
		consumed += used
	}
	for _, o := range s.Options {
		if o.Count < 0 {
			return fmt.Errorf("session %s: option %s has negative count", s.ID, o.ID)
		}
	}
	if total := s.TotalVotes(); total != consumed {
		return fmt.Errorf("session %s: option counts total %d but %d votes consumed", s.ID, total, consumed)
	}
	return nil
}
