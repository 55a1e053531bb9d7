package openapi

import (
	"encoding/json"
	"testing"
)

func TestGenerateCoversEveryConsumedPath(t *testing.T) {
	doc := Generate("http://localhost:8080")

	wantPaths := []string{
		"/api/admin/login",
		"/api/admin/profile",
		"/api/admin/dashboard-stats",
		"/api/admin/users",
		"/api/auth/signup",
		"/api/admin/users/pending-confirmations",
		"/api/admin/users/{userId}",
		"/api/admin/users/{userId}/status",
		"/api/admin/users/{userId}/reset-password",
		"/api/admin/users/{userId}/confirm-email",
		"/api/admin/users/{userId}/resend-confirmation",
		"/api/admin/tasks",
		"/api/admin/tasks/{taskId}",
		"/api/admin/tasks/{taskId}/archive",
		"/api/admin/tasks/{taskId}/unarchive",
		"/api/admin/withdrawals",
		"/api/admin/withdrawals/{withdrawalId}/approve",
		"/api/admin/withdrawals/{withdrawalId}/decline",
		"/api/admin/withdrawals/{withdrawalId}/paid",
		"/api/admin/referrals",
		"/api/admin/upgrades",
		"/api/admin/upgrades/{upgradeId}/approve",
		"/api/admin/upgrades/{upgradeId}/reject",
		"/api/admin/admins",
		"/api/admin/invite",
		"/api/admin/emails",
		"/api/admin/notifications",
	}
	for _, p := range wantPaths {
		if doc.Paths.Find(p) == nil {
			t.Errorf("path %s missing from document", p)
		}
	}
	if got := doc.Paths.Len(); got != len(wantPaths) {
		t.Errorf("document has %d paths, want %d", got, len(wantPaths))
	}
}

func TestGenerateSchemasAndSecurity(t *testing.T) {
	doc := Generate("http://localhost:8080")

	for _, name := range []string{
		"ErrorResponse", "Credentials", "LoginResult", "User", "NewUser",
		"Task", "NewTask", "Withdrawal", "Referral", "Upgrade", "Admin",
		"ProfileUpdate", "EmailLog", "Broadcast", "DashboardStats",
	} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("schema %s missing", name)
		}
	}

	if _, ok := doc.Components.SecuritySchemes["bearerAuth"]; !ok {
		t.Error("bearerAuth security scheme missing")
	}

	// Login and signup opt out of the bearer requirement.
	login := doc.Paths.Find("/api/admin/login").Post
	if login.Security == nil || len(*login.Security) != 0 {
		t.Error("login should carry an empty security requirement")
	}
	signup := doc.Paths.Find("/api/auth/signup").Post
	if signup.Security == nil || len(*signup.Security) != 0 {
		t.Error("signup should carry an empty security requirement")
	}
}

func TestGenerateMarshalsToJSON(t *testing.T) {
	doc := Generate("http://localhost:8080")
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round["openapi"] != "3.1.0" {
		t.Errorf("openapi version = %v", round["openapi"])
	}
}
