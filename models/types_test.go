// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRole_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{`"admin"`, RoleAdmin, false},
		{`"voter"`, RoleVoter, false},
		{`"user"`, RoleVoter, false},
		{`""`, "", false},
		{`"owner"`, "", true},
		{`42`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Role
			err := json.Unmarshal([]byte(tt.input), &r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && r != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, r, tt.want)
			}
		})
	}
}

func TestUser_Public(t *testing.T) {
	u := User{ID: "u1", Username: "alice", Password: "secret", Role: RoleVoter}

	pub := u.Public()
	if pub.Password != "" {
		t.Error("Expected Public() to strip the password")
	}
	if u.Password != "secret" {
		t.Error("Expected Public() to leave the original untouched")
	}

	data, _ := json.Marshal(pub)
	if strings.Contains(string(data), "password") {
		t.Errorf("Expected no password field in %s", data)
	}
}

func TestAppState_DecodeLegacyDocument(t *testing.T) {
	doc := `{
		"config": {"startPassword": "gate"},
		"users": [{"id": "u1", "username": "old", "password": "pw", "role": "user", "votesAllowed": 2}],
		"sessions": [{"id": "s1", "title": "T", "options": [{"id": "o1", "text": "A", "count": 0}], "votesPerUser": 1, "isActive": true}]
	}`

	var st AppState
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	st.Normalize()

	if st.Users[0].Role != RoleVoter {
		t.Errorf("Expected legacy role to decode as voter, got %q", st.Users[0].Role)
	}
	if st.Sessions[0].UserVotes == nil || st.Sessions[0].AllowedUserIDs == nil {
		t.Error("Expected Normalize to fill nil collections")
	}

	out, _ := json.Marshal(st)
	if strings.Contains(string(out), "null") {
		t.Errorf("Expected no null collections in %s", out)
	}
}
