// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of capabilities a user can hold.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleVoter Role = "voter"
)

// legacyRoleVoter is how older documents spelled RoleVoter.
const legacyRoleVoter = "user"

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVoter
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case string(RoleAdmin):
		*r = RoleAdmin
	case string(RoleVoter), legacyRoleVoter:
		*r = RoleVoter
	case "":
		*r = ""
	default:
		return fmt.Errorf("unknown role %q", s)
	}
	return nil
}

// Domain types

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	Role         Role   `json:"role"`
	VotesAllowed int    `json:"votesAllowed"`
	IP           string `json:"ip,omitempty"`
	Location     string `json:"location,omitempty"`
	LastSeen     int64  `json:"lastSeen,omitempty"` // unix ms
	IsBlocked    bool   `json:"isBlocked,omitempty"`
}

// Public returns a copy of the user without its secret.
func (u User) Public() User {
	u.Password = ""
	return u
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type VoteOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type Session struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Options        []VoteOption   `json:"options"`
	AllowedUserIDs []string       `json:"allowedUserIds"`
	VotesPerUser   int            `json:"votesPerUser"`
	IsActive       bool           `json:"isActive"`
	UserVotes      map[string]int `json:"userVotes"`
	CreatedAt      int64          `json:"createdAt"` // unix ms
}

type Config struct {
	StartPassword string `json:"startPassword"`
}

// AppState is the aggregate persisted as a single document.
type AppState struct {
	Config   Config    `json:"config"`
	Users    []User    `json:"users"`
	Sessions []Session `json:"sessions"`
}

// Request types

type CastVoteRequest struct {
	SessionID string `json:"sessionId"`
	OptionID  string `json:"optionId"`
	UserID    string `json:"userId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type GateRequest struct {
	Password string `json:"password"`
}

type UpdateConfigRequest struct {
	StartPassword string `json:"startPassword"`
}

// Response types

type VoteResponse struct {
	SessionID      string         `json:"sessionId"`
	Tallies        map[string]int `json:"tallies"`
	VotesUsed      int            `json:"votesUsed"`
	VotesRemaining int            `json:"votesRemaining"`
}

// SessionView is a session as seen by one voter.
type SessionView struct {
	Session        Session `json:"session"`
	VotesUsed      int     `json:"votesUsed"`
	VotesRemaining int     `json:"votesRemaining"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
