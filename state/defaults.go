// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package state

import "github.com/danielhkuo/securevote/models"

const (
	DefaultStartPassword = "secure-start"
	DefaultAdminPassword = "12345"

	BootstrapAdminID       = "admin-1"
	BootstrapAdminUsername = "admin"
)

// Defaults configures the first-boot document.
type Defaults struct {
	StartPassword string
	AdminPassword string
}

// State returns the document used when nothing has been stored yet: one
// bootstrap admin, no sessions. It is deterministic.
func (d Defaults) State() models.AppState {
	startPassword := d.StartPassword
	if startPassword == "" {
		startPassword = DefaultStartPassword
	}
	adminPassword := d.AdminPassword
	if adminPassword == "" {
		adminPassword = DefaultAdminPassword
	}

	return models.AppState{
		Config: models.Config{StartPassword: startPassword},
		Users: []models.User{
			{
				ID:           BootstrapAdminID,
				Username:     BootstrapAdminUsername,
				Password:     adminPassword,
				Role:         models.RoleAdmin,
				VotesAllowed: 10,
				IP:           "127.0.0.1",
				Location:     "system console",
			},
		},
		Sessions: []models.Session{},
	}
}
