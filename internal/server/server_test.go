package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/live"
	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin123"
)

func newTestServer(t *testing.T) (*httptest.Server, *Dataset) {
	t.Helper()
	data := SeedDataset()
	authSvc := service.NewAuthService([]service.Credential{
		{AdminID: "adm-1", Email: testAdminEmail, PasswordHash: service.HashPassword(testAdminPassword)},
	}, "stub-test-secret", time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(DefaultConfig(), data, authSvc, logger)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, data
}

// newClient logs in through the stub and returns an authenticated client.
func newClient(t *testing.T, ts *httptest.Server) *api.Client {
	t.Helper()
	cfg := api.DefaultConfig(ts.URL)

	anon := api.New(cfg, nil)
	res, err := anon.Login(context.Background(), model.Credentials{
		Email: testAdminEmail, Password: testAdminPassword,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return api.New(cfg, api.StaticToken(res.Token))
}

func wantHTTPStatus(t *testing.T, err error, status int) *api.HTTPError {
	t.Helper()
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *api.HTTPError", err)
	}
	if httpErr.Status != status {
		t.Fatalf("status = %d, want %d (message %q)", httpErr.Status, status, httpErr.Message)
	}
	return httpErr
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	cfg := api.DefaultConfig(ts.URL)
	client := api.New(cfg, nil)

	res, err := client.Login(context.Background(), model.Credentials{
		Email: testAdminEmail, Password: testAdminPassword,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a session token")
	}

	_, err = client.Login(context.Background(), model.Credentials{
		Email: testAdminEmail, Password: "wrong",
	})
	httpErr := wantHTTPStatus(t, err, 401)
	if httpErr.Message != "Invalid email or password" {
		t.Errorf("message = %q", httpErr.Message)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t)
	cfg := api.DefaultConfig(ts.URL)
	anon := api.New(cfg, nil)

	_, err := anon.ListUsers(context.Background())
	wantHTTPStatus(t, err, 401)
}

func TestUserLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	users, err := client.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	seeded := len(users)

	nu := model.NewUser{
		Name: "Dele Ojo", Username: "dele", Email: "dele@example.com",
		Phone: "08030000009", Password: "secret", Level: 2,
		Amount: model.UpgradeAmount(2),
	}
	if err := client.CreateUser(ctx, nu); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err = client.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers after create: %v", err)
	}
	if len(users) != seeded+1 {
		t.Fatalf("len(users) = %d, want %d", len(users), seeded+1)
	}
	var created model.User
	for _, u := range users {
		if u.Email == "dele@example.com" {
			created = u
		}
	}
	if created.ID == "" || created.Status != model.UserStatusPending {
		t.Fatalf("created user = %+v, want a pending record", created)
	}

	// Signup amount off the fee schedule is rejected.
	bad := nu
	bad.Email = "other@example.com"
	bad.Amount = 1
	wantHTTPStatus(t, client.CreateUser(ctx, bad), 400)

	// Duplicate email conflicts.
	wantHTTPStatus(t, client.CreateUser(ctx, nu), 409)

	// New pending users show up in the confirmation queue; confirming
	// moves them to active and out of it.
	pending, err := client.PendingConfirmations(ctx)
	if err != nil {
		t.Fatalf("PendingConfirmations: %v", err)
	}
	found := false
	for _, u := range pending {
		if u.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("created user missing from pending confirmations")
	}
	if err := client.ConfirmEmail(ctx, created.ID); err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}
	got, err := client.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Status != model.UserStatusActive {
		t.Errorf("status after confirm = %q, want active", got.Status)
	}

	if err := client.UpdateUserStatus(ctx, created.ID, model.UserStatusSuspended); err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	if err := client.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	_, err = client.GetUser(ctx, created.ID)
	wantHTTPStatus(t, err, 404)
}

func TestResendAndResetAppendEmailLog(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	users, err := client.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	target := users[0]

	before, err := client.ListEmailLogs(ctx)
	if err != nil {
		t.Fatalf("ListEmailLogs: %v", err)
	}

	if err := client.ResetPassword(ctx, target.ID); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := client.ResendConfirmation(ctx, target.ID); err != nil {
		t.Fatalf("ResendConfirmation: %v", err)
	}

	after, err := client.ListEmailLogs(ctx)
	if err != nil {
		t.Fatalf("ListEmailLogs after: %v", err)
	}
	if len(after) != len(before)+2 {
		t.Errorf("len(emails) = %d, want %d", len(after), len(before)+2)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	if err := client.CreateTask(ctx, model.NewTask{Title: "Share the launch post", Link: "https://example.com/launch"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	tasks, err := client.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	var created model.Task
	for _, task := range tasks {
		if task.Title == "Share the launch post" {
			created = task
		}
	}
	if created.ID == "" || created.Status != model.TaskStatusActive {
		t.Fatalf("created task = %+v, want an active record", created)
	}

	if err := client.ArchiveTask(ctx, created.ID); err != nil {
		t.Fatalf("ArchiveTask: %v", err)
	}
	if err := client.UnarchiveTask(ctx, created.ID); err != nil {
		t.Fatalf("UnarchiveTask: %v", err)
	}
	if err := client.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	wantHTTPStatus(t, client.ArchiveTask(ctx, created.ID), 404)
}

func TestWithdrawalTransitions(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	ws, err := client.ListWithdrawals(ctx)
	if err != nil {
		t.Fatalf("ListWithdrawals: %v", err)
	}
	var pending model.Withdrawal
	for _, w := range ws {
		if w.Status == model.WithdrawalStatusPending {
			pending = w
		}
	}
	if pending.ID == "" {
		t.Fatal("seed dataset has no pending withdrawal")
	}

	// Paid before approval is an invalid transition.
	wantHTTPStatus(t, client.MarkWithdrawalPaid(ctx, pending.ID), 409)

	if err := client.ApproveWithdrawal(ctx, pending.ID); err != nil {
		t.Fatalf("ApproveWithdrawal: %v", err)
	}
	// Declining an approved request is too late.
	wantHTTPStatus(t, client.DeclineWithdrawal(ctx, pending.ID), 409)

	if err := client.MarkWithdrawalPaid(ctx, pending.ID); err != nil {
		t.Fatalf("MarkWithdrawalPaid: %v", err)
	}
}

func TestUpgradeApprovalBumpsLevelAndEarnings(t *testing.T) {
	ts, data := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	before := data.Stats()

	ups, err := client.ListUpgrades(ctx)
	if err != nil {
		t.Fatalf("ListUpgrades: %v", err)
	}
	var pending model.Upgrade
	for _, up := range ups {
		if up.Status == model.UpgradeStatusPending {
			pending = up
		}
	}
	if pending.ID == "" {
		t.Fatal("seed dataset has no pending upgrade")
	}
	if pending.Amount != model.UpgradeAmount(pending.Level) {
		t.Fatalf("seeded upgrade amount %d does not match fee schedule", pending.Amount)
	}

	if err := client.ApproveUpgrade(ctx, pending.ID); err != nil {
		t.Fatalf("ApproveUpgrade: %v", err)
	}

	after := data.Stats()
	if after.TotalEarnings != before.TotalEarnings+pending.Amount {
		t.Errorf("earnings = %d, want %d", after.TotalEarnings, before.TotalEarnings+pending.Amount)
	}
	for _, u := range data.Users() {
		if u.Username == pending.User && u.Level != pending.Level {
			t.Errorf("user %s level = %d, want %d", u.Username, u.Level, pending.Level)
		}
	}

	wantHTTPStatus(t, client.RejectUpgrade(ctx, pending.ID), 409)
}

func TestDashboardStatsNormalized(t *testing.T) {
	ts, data := newTestServer(t)
	client := newClient(t, ts)

	stats, err := client.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats != data.Stats() {
		t.Errorf("client stats %+v != dataset stats %+v", stats, data.Stats())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	admin, err := client.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if admin.Email != testAdminEmail {
		t.Errorf("profile email = %q", admin.Email)
	}

	upd := model.ProfileUpdate{Email: testAdminEmail, Contact: "08099999999"}
	if err := client.UpdateProfile(ctx, upd); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	admins, err := client.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if admins[0].Contact != "08099999999" {
		t.Errorf("contact = %q, want updated value", admins[0].Contact)
	}
}

func TestInviteAdminLogsEmail(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	if err := client.InviteAdmin(ctx, "new-admin@example.com"); err != nil {
		t.Fatalf("InviteAdmin: %v", err)
	}
	logs, err := client.ListEmailLogs(ctx)
	if err != nil {
		t.Fatalf("ListEmailLogs: %v", err)
	}
	found := false
	for _, l := range logs {
		if l.Type == "admin-invite" && l.Recipient == "new-admin@example.com" {
			found = true
		}
	}
	if !found {
		t.Error("invite email missing from audit trail")
	}
}

// TestPushChannel runs the full live path: subscribe over WebSocket, mutate
// through the HTTP API, and observe the resulting push frames.
func TestPushChannel(t *testing.T) {
	ts, data := newTestServer(t)
	client := newClient(t, ts)
	ctx := context.Background()

	ch, err := live.Dial(ctx, ts.URL, "", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ch.Close()

	if err := client.CreateTask(ctx, model.NewTask{Title: "Push test task", Link: "https://example.com/p"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := client.SendBroadcast(ctx, "Maintenance tonight"); err != nil {
		t.Fatalf("SendBroadcast: %v", err)
	}

	var gotStats, gotNotice bool
	timeout := time.After(5 * time.Second)
	for !(gotStats && gotNotice) {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				t.Fatalf("event stream closed early: %v", ch.Err())
			}
			switch ev.Name {
			case live.EventDashboardUpdate:
				if ev.Stats != data.Stats() {
					t.Errorf("pushed stats %+v != dataset stats %+v", ev.Stats, data.Stats())
				}
				gotStats = true
			case live.EventNotification:
				if ev.Notice.Message != "Maintenance tonight" {
					t.Errorf("notice = %+v", ev.Notice)
				}
				gotNotice = true
			}
		case <-timeout:
			t.Fatalf("timed out: stats=%v notice=%v", gotStats, gotNotice)
		}
	}
}

func TestPushChannelRejectsBadToken(t *testing.T) {
	ts, _ := newTestServer(t)

	_, err := live.Dial(context.Background(), ts.URL, "not.a.token", nil)
	if err == nil {
		t.Fatal("Dial with a bad token should fail")
	}
}
