// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/securevote/models"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// UpsertUser creates u, or replaces the stored user with the same id.
// Updates keep the stored tracking fields, and keep the stored password
// and role when u carries none. New users without a role are voters.
func (l *Ledger) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return models.User{}, invalid("username is required")
	}
	if u.Role != "" && !u.Role.Valid() {
		return models.User{}, invalid("role must be admin or voter")
	}
	if u.VotesAllowed < 0 {
		return models.User{}, invalid("votesAllowed must not be negative")
	}

	var stored models.User
	_, err := l.Mutate(ctx, "upsert_user", func(st *models.AppState) error {
		u := u
		idx := -1
		if u.ID != "" {
			idx = st.FindUser(u.ID)
		}
		if other := st.FindUsername(u.Username); other >= 0 && other != idx {
			return invalid("username %q is already taken", u.Username)
		}

		if idx < 0 {
			if u.Password == "" {
				return invalid("password is required for new users")
			}
			if u.ID == "" {
				u.ID = uuid.NewString()
			}
			if u.Role == "" {
				u.Role = models.RoleVoter
			}
			u.IP, u.Location, u.LastSeen = "", "", 0
			st.Users = append(st.Users, u)
			stored = u
			return nil
		}

		prev := st.Users[idx]
		u.IP, u.Location, u.LastSeen = prev.IP, prev.Location, prev.LastSeen
		if u.Password == "" {
			u.Password = prev.Password
		}
		if u.Role == "" {
			u.Role = prev.Role
		}
		st.Users[idx] = u
		if st.AdminCount() == 0 {
			return invalid("at least one active admin must remain")
		}
		stored = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	slog.Info("user saved", "user_id", stored.ID, "username", stored.Username, "role", stored.Role)
	return stored, nil
}

// DeleteUser removes user id on behalf of actorID. Admins cannot delete
// themselves and the last active admin cannot be deleted. The user is
// dropped from every session's eligible list; recorded consumption stays so
// tallies keep adding up.
func (l *Ledger) DeleteUser(ctx context.Context, actorID, id string) error {
	_, err := l.Mutate(ctx, "delete_user", func(st *models.AppState) error {
		idx := st.FindUser(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		if id == actorID {
			return invalid("you cannot delete your own account")
		}

		st.Users = slices.Delete(st.Users, idx, idx+1)
		if st.AdminCount() == 0 {
			return invalid("at least one active admin must remain")
		}

		for i := range st.Sessions {
			sess := &st.Sessions[i]
			sess.AllowedUserIDs = slices.DeleteFunc(sess.AllowedUserIDs, func(uid string) bool { return uid == id })
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("user deleted", "user_id", id, "actor_id", actorID)
	return nil
}

// UpsertSession creates s, or replaces the stored session with the same id.
// Option counts, userVotes and createdAt are owned by the ledger: they are
// carried over from the stored session and ignored on input.
func (l *Ledger) UpsertSession(ctx context.Context, s models.Session) (models.Session, error) {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return models.Session{}, invalid("title is required")
	}
	if s.VotesPerUser < 1 {
		return models.Session{}, invalid("votesPerUser must be at least 1")
	}
	if len(s.Options) == 0 {
		return models.Session{}, invalid("at least one option is required")
	}

	s.Options = slices.Clone(s.Options)
	seen := make(map[string]bool, len(s.Options))
	for i := range s.Options {
		opt := &s.Options[i]
		opt.Text = strings.TrimSpace(opt.Text)
		if opt.Text == "" {
			return models.Session{}, invalid("option %d has no text", i+1)
		}
		if opt.ID == "" {
			opt.ID = uuid.NewString()
		}
		if seen[opt.ID] {
			return models.Session{}, invalid("duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = true
		opt.Count = 0
	}

	allowed := make([]string, 0, len(s.AllowedUserIDs))
	for _, uid := range s.AllowedUserIDs {
		if !slices.Contains(allowed, uid) {
			allowed = append(allowed, uid)
		}
	}
	s.AllowedUserIDs = allowed

	var stored models.Session
	_, err := l.Mutate(ctx, "upsert_session", func(st *models.AppState) error {
		for _, uid := range s.AllowedUserIDs {
			if st.FindUser(uid) < 0 {
				return invalid("unknown user %q in allowedUserIds", uid)
			}
		}

		next := s
		idx := -1
		if next.ID != "" {
			idx = st.FindSession(next.ID)
		}

		if idx < 0 {
			if next.ID == "" {
				next.ID = uuid.NewString()
			}
			next.UserVotes = map[string]int{}
			next.CreatedAt = l.nowMillis()
			st.Sessions = append(st.Sessions, next)
			stored = next
			return nil
		}

		prev := st.Sessions[idx]
		next.Options = slices.Clone(s.Options)
		for _, old := range prev.Options {
			j := next.FindOption(old.ID)
			if j < 0 {
				if old.Count > 0 {
					return invalid("option %q has %d recorded votes and cannot be removed", old.Text, old.Count)
				}
				continue
			}
			next.Options[j].Count = old.Count
		}

		next.UserVotes = prev.Clone().UserVotes
		for uid, used := range next.UserVotes {
			if used > next.VotesPerUser {
				return invalid("user %s already cast %d votes, above votesPerUser %d", uid, used, next.VotesPerUser)
			}
		}
		next.CreatedAt = prev.CreatedAt

		st.Sessions[idx] = next
		stored = next
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	slog.Info("session saved", "session_id", stored.ID, "title", stored.Title, "options", len(stored.Options), "active", stored.IsActive)
	return stored, nil
}

// DeleteSession removes the session and its tallies.
func (l *Ledger) DeleteSession(ctx context.Context, id string) error {
	_, err := l.Mutate(ctx, "delete_session", func(st *models.AppState) error {
		idx := st.FindSession(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		st.Sessions = slices.Delete(st.Sessions, idx, idx+1)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("session deleted", "session_id", id)
	return nil
}

// SetGatePassword replaces the site-wide gate password.
func (l *Ledger) SetGatePassword(ctx context.Context, password string) error {
	if password == "" {
		return invalid("startPassword is required")
	}
	_, err := l.Mutate(ctx, "set_gate_password", func(st *models.AppState) error {
		st.Config.StartPassword = password
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("gate password changed")
	return nil
}
