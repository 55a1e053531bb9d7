package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dta-platform/adminctl/internal/model"
)

// Endpoint families of the consumed API. Everything lives under /api; the
// one outlier is user creation, which the backend exposes on the public
// signup route rather than under /admin.
const (
	pathLogin                = "/api/admin/login"
	pathProfile              = "/api/admin/profile"
	pathDashboardStats       = "/api/admin/dashboard-stats"
	pathUsers                = "/api/admin/users"
	pathSignup               = "/api/auth/signup"
	pathPendingConfirmations = "/api/admin/users/pending-confirmations"
	pathTasks                = "/api/admin/tasks"
	pathWithdrawals          = "/api/admin/withdrawals"
	pathReferrals            = "/api/admin/referrals"
	pathUpgrades             = "/api/admin/upgrades"
	pathAdmins               = "/api/admin/admins"
	pathInvite               = "/api/admin/invite"
	pathEmails               = "/api/admin/emails"
	pathNotifications        = "/api/admin/notifications"
)

// Login authenticates the administrator. It is the only operation that
// never sends a bearer token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	var res model.LoginResult
	err := c.do(ctx, http.MethodPost, pathLogin, creds, &res)
	return res, err
}

// Profile returns the authenticated admin's own account.
func (c *Client) Profile(ctx context.Context) (model.Admin, error) {
	var a model.Admin
	err := c.do(ctx, http.MethodGet, pathProfile, nil, &a)
	return a, err
}

// UpdateProfile updates the authenticated admin's email, password, contact.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, pathProfile, upd, nil)
}

// DashboardStats fetches the aggregate counters, normalized through the
// configured field map so both backend schemas decode identically.
func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var payload map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, pathDashboardStats, nil, &payload); err != nil {
		return model.DashboardStats{}, err
	}
	return model.StatsFromPayload(payload, c.cfg.FieldMap), nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, pathUsers, nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, pathUsers+"/"+id, nil, &u)
	return u, err
}

// CreateUser registers a member on the admin's behalf via the signup route.
func (c *Client) CreateUser(ctx context.Context, nu model.NewUser) error {
	return c.do(ctx, http.MethodPost, pathSignup, nu, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathUsers+"/"+id, nil, nil)
}

func (c *Client) UpdateUserStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, pathUsers+"/"+id+"/status", body, nil)
}

func (c *Client) ResetPassword(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathUsers+"/"+id+"/reset-password", nil, nil)
}

func (c *Client) ConfirmEmail(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathUsers+"/"+id+"/confirm-email", nil, nil)
}

func (c *Client) ResendConfirmation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathUsers+"/"+id+"/resend-confirmation", nil, nil)
}

// PendingConfirmations lists users still awaiting email confirmation.
func (c *Client) PendingConfirmations(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, pathPendingConfirmations, nil, &users)
	return users, err
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := c.do(ctx, http.MethodGet, pathTasks, nil, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, nt model.NewTask) error {
	return c.do(ctx, http.MethodPost, pathTasks, nt, nil)
}

func (c *Client) ArchiveTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathTasks+"/"+id+"/archive", nil, nil)
}

func (c *Client) UnarchiveTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathTasks+"/"+id+"/unarchive", nil, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathTasks+"/"+id, nil, nil)
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

func (c *Client) ListWithdrawals(ctx context.Context) ([]model.Withdrawal, error) {
	var ws []model.Withdrawal
	err := c.do(ctx, http.MethodGet, pathWithdrawals, nil, &ws)
	return ws, err
}

func (c *Client) ApproveWithdrawal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathWithdrawals+"/"+id+"/approve", nil, nil)
}

func (c *Client) DeclineWithdrawal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathWithdrawals+"/"+id+"/decline", nil, nil)
}

func (c *Client) MarkWithdrawalPaid(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathWithdrawals+"/"+id+"/paid", nil, nil)
}

// ---------------------------------------------------------------------------
// Referrals, upgrades
// ---------------------------------------------------------------------------

func (c *Client) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	var rs []model.Referral
	err := c.do(ctx, http.MethodGet, pathReferrals, nil, &rs)
	return rs, err
}

func (c *Client) ListUpgrades(ctx context.Context) ([]model.Upgrade, error) {
	var us []model.Upgrade
	err := c.do(ctx, http.MethodGet, pathUpgrades, nil, &us)
	return us, err
}

func (c *Client) ApproveUpgrade(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathUpgrades+"/"+id+"/approve", nil, nil)
}

func (c *Client) RejectUpgrade(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, pathUpgrades+"/"+id+"/reject", nil, nil)
}

// ---------------------------------------------------------------------------
// Admins, emails, notifications
// ---------------------------------------------------------------------------

func (c *Client) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var as []model.Admin
	err := c.do(ctx, http.MethodGet, pathAdmins, nil, &as)
	return as, err
}

func (c *Client) InviteAdmin(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, pathInvite, body, nil)
}

func (c *Client) ListEmailLogs(ctx context.Context) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	err := c.do(ctx, http.MethodGet, pathEmails, nil, &logs)
	return logs, err
}

// SendBroadcast pushes a notification message to every connected member.
func (c *Client) SendBroadcast(ctx context.Context, message string) error {
	return c.do(ctx, http.MethodPost, pathNotifications, model.Broadcast{Message: message}, nil)
}
