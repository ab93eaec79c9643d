package model

import (
	"testing"
	"time"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleMember, true},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleMember, true},
		// Unknown roles fail-closed.
		{"unknown", RoleMember, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleMember, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestRequestDrives(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"pending", Request{Status: RequestStatusPending}, false},
		{"accepted", Request{Status: RequestStatusAccepted}, true},
		{"rejected", Request{Status: RequestStatusRejected}, false},
		{"done awaiting return", Request{Status: RequestStatusDone}, true},
		{"done and completed", Request{Status: RequestStatusDone, CompletedAt: &now}, false},
	}

	for _, tt := range tests {
		if got := tt.req.Drives(); got != tt.want {
			t.Errorf("%s: Drives() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	u := User{Username: "ana"}
	if got := u.DisplayName(); got != "ana" {
		t.Errorf("expected username fallback, got %q", got)
	}
	u.Name = "Ana Novak"
	if got := u.DisplayName(); got != "Ana Novak" {
		t.Errorf("expected display name, got %q", got)
	}
}
