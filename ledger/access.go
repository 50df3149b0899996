// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/securevote/auth"
	"github.com/danielhkuo/securevote/models"
)

// Origin describes where a login came from. Informational only.
type Origin struct {
	IP       string
	Location string
}

// Login checks the credentials and records the login origin on the user.
// Unknown usernames, wrong passwords and blocked users all fail with
// ErrInvalidCredentials. The returned user has no password.
func (l *Ledger) Login(ctx context.Context, username, password string, origin Origin) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if origin.IP == "" {
		origin.IP = "unknown"
	}
	if origin.Location == "" {
		origin.Location = "unknown"
	}

	var user models.User
	_, err := l.Mutate(ctx, "login", func(st *models.AppState) error {
		i := st.FindUsername(username)
		if i < 0 {
			return ErrInvalidCredentials
		}
		u := &st.Users[i]
		if !auth.SecretsEqual(password, u.Password) || u.IsBlocked {
			return ErrInvalidCredentials
		}
		u.IP = origin.IP
		u.Location = origin.Location
		u.LastSeen = l.nowMillis()
		user = u.Public()
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// CheckGate compares password with the site-wide gate password.
func (l *Ledger) CheckGate(ctx context.Context, password string) error {
	st, err := l.Snapshot(ctx)
	if err != nil {
		return err
	}
	if password == "" || !auth.SecretsEqual(password, st.Config.StartPassword) {
		return ErrInvalidCredentials
	}
	return nil
}

// Authorize returns the user if it exists, is not blocked, and is an admin.
func (l *Ledger) Authorize(ctx context.Context, userID string) (models.User, error) {
	st, err := l.Snapshot(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := st.FindUser(userID)
	if i < 0 {
		return models.User{}, fmt.Errorf("%w: %s", ErrForbidden, userID)
	}
	u := st.Users[i]
	if !u.IsAdmin() || u.IsBlocked {
		return models.User{}, fmt.Errorf("%w: %s", ErrForbidden, userID)
	}
	return u.Public(), nil
}
