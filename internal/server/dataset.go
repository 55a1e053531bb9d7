package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dta-platform/adminctl/internal/model"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

// Dataset is the stub backend's in-memory state. Every mutation updates it
// in place so a refresh after a mutating call observes the new state, the
// same contract the real platform gives the console.
type Dataset struct {
	mu          sync.RWMutex
	users       []model.User
	tasks       []model.Task
	withdrawals []model.Withdrawal
	referrals   []model.Referral
	upgrades    []model.Upgrade
	admins      []model.Admin
	emails      []model.EmailLog
	earnings    int64
}

// SeedDataset returns a Dataset pre-populated with a small, coherent world:
// a few members at different levels, open tasks, one pending withdrawal and
// one pending upgrade, so every console view has something to show.
func SeedDataset() *Dataset {
	now := time.Now().UTC()
	reg := func(daysAgo int) *time.Time {
		t := now.AddDate(0, 0, -daysAgo)
		return &t
	}

	d := &Dataset{
		users: []model.User{
			{ID: newID(), Name: "Ada Obi", Username: "ada", Email: "ada@example.com", Phone: "08030000001",
				Level: 2, Status: model.UserStatusActive, Invites: 4, TasksCompleted: 12, RegistrationDate: reg(40)},
			{ID: newID(), Name: "Bayo Musa", Username: "bayo", Email: "bayo@example.com", Phone: "08030000002",
				Level: 1, Status: model.UserStatusPending, Invites: 0, TasksCompleted: 1, RegistrationDate: reg(2)},
			{ID: newID(), Name: "Chika Eze", Username: "chika", Email: "chika@example.com", Phone: "08030000003",
				Level: 3, Status: model.UserStatusVerified, Invites: 11, TasksCompleted: 30, RegistrationDate: reg(90)},
		},
		tasks: []model.Task{
			{ID: newID(), Title: "Follow our X account", Link: "https://x.com/example", Completions: 25, Status: model.TaskStatusActive},
			{ID: newID(), Title: "Join the Telegram group", Link: "https://t.me/example", Completions: 18, Status: model.TaskStatusActive},
			{ID: newID(), Title: "Old promo task", Link: "https://example.com/promo", Completions: 90, Status: model.TaskStatusArchived},
		},
		referrals: []model.Referral{
			{User: "ada", ReferralCount: 4, BonusPaid: 2000},
			{User: "chika", ReferralCount: 11, BonusPaid: 5500, IsSuspicious: true},
		},
		admins: []model.Admin{
			{ID: newID(), Email: "admin@example.com", Contact: "08030000000"},
		},
		emails: []model.EmailLog{
			{Type: "confirmation", Recipient: "bayo@example.com", Timestamp: now.Add(-48 * time.Hour)},
			{Type: "password-reset", Recipient: "ada@example.com", Timestamp: now.Add(-3 * time.Hour)},
		},
		earnings: 3 * model.BaseSignupFee,
	}
	d.withdrawals = []model.Withdrawal{
		{ID: newID(), UserID: d.users[0].ID, Amount: 5000, Date: now.Add(-24 * time.Hour), Status: model.WithdrawalStatusPending},
		{ID: newID(), UserID: d.users[2].ID, Amount: 12000, Date: now.Add(-72 * time.Hour), Status: model.WithdrawalStatusPaid},
	}
	d.upgrades = []model.Upgrade{
		{ID: newID(), User: "ada", Level: 3, Amount: model.UpgradeAmount(3), Status: model.UpgradeStatusPending},
	}
	return d
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

// Stats derives the dashboard counters from current state.
func (d *Dataset) Stats() model.DashboardStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var completions int64
	for _, t := range d.tasks {
		completions += int64(t.Completions)
	}
	var pending int64
	for _, w := range d.withdrawals {
		if w.Status == model.WithdrawalStatusPending {
			pending++
		}
	}
	return model.DashboardStats{
		TotalUsers:         int64(len(d.users)),
		TotalEarnings:      d.earnings,
		TotalTasks:         completions,
		PendingWithdrawals: pending,
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (d *Dataset) Users() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.User(nil), d.users...)
}

func (d *Dataset) User(id string) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user %s: %w", id, errNotFound)
}

// PendingConfirmations lists members still awaiting email confirmation.
func (d *Dataset) PendingConfirmations() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.User
	for _, u := range d.users {
		if u.Status == model.UserStatusPending {
			out = append(out, u)
		}
	}
	return out
}

// CreateUser registers a member. The signup amount must match the fee
// schedule for the chosen level.
func (d *Dataset) CreateUser(nu model.NewUser) (model.User, error) {
	if want := model.UpgradeAmount(nu.Level); nu.Amount != want {
		return model.User{}, fmt.Errorf("amount %d does not match level %d fee %d", nu.Amount, nu.Level, want)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Email == nu.Email {
			return model.User{}, fmt.Errorf("email %s: %w", nu.Email, errConflict)
		}
	}

	now := time.Now().UTC()
	u := model.User{
		ID:               newID(),
		Name:             nu.Name,
		Username:         nu.Username,
		Email:            nu.Email,
		Phone:            nu.Phone,
		Level:            nu.Level,
		Status:           model.UserStatusPending,
		RegistrationDate: &now,
	}
	d.users = append(d.users, u)
	d.earnings += nu.Amount
	d.emails = append(d.emails, model.EmailLog{Type: "confirmation", Recipient: u.Email, Timestamp: now})
	return u, nil
}

func (d *Dataset) DeleteUser(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, u := range d.users {
		if u.ID == id {
			d.users = append(d.users[:i], d.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, errNotFound)
}

func (d *Dataset) SetUserStatus(id, status string) error {
	if !model.ValidUserStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			d.users[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, errNotFound)
}

// ConfirmEmail moves a pending member to active.
func (d *Dataset) ConfirmEmail(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			if d.users[i].Status != model.UserStatusPending {
				return fmt.Errorf("user %s is not pending: %w", id, errConflict)
			}
			d.users[i].Status = model.UserStatusActive
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, errNotFound)
}

// LogEmail appends to the outbound email audit trail for the given user.
func (d *Dataset) LogEmail(id, emailType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID == id {
			d.emails = append(d.emails, model.EmailLog{
				Type:      emailType,
				Recipient: u.Email,
				Timestamp: time.Now().UTC(),
			})
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, errNotFound)
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (d *Dataset) Tasks() []model.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Task(nil), d.tasks...)
}

func (d *Dataset) CreateTask(nt model.NewTask) model.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := model.Task{
		ID:     newID(),
		Title:  nt.Title,
		Link:   nt.Link,
		Status: model.TaskStatusActive,
	}
	d.tasks = append(d.tasks, t)
	return t
}

func (d *Dataset) SetTaskStatus(id, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tasks {
		if d.tasks[i].ID == id {
			d.tasks[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, errNotFound)
}

func (d *Dataset) DeleteTask(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, errNotFound)
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

func (d *Dataset) Withdrawals() []model.Withdrawal {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Withdrawal(nil), d.withdrawals...)
}

// SetWithdrawalStatus applies the review transitions: pending requests can
// be approved or declined; approved requests can be marked paid.
func (d *Dataset) SetWithdrawalStatus(id, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.withdrawals {
		w := &d.withdrawals[i]
		if w.ID != id {
			continue
		}
		switch status {
		case model.WithdrawalStatusApproved, model.WithdrawalStatusDeclined:
			if w.Status != model.WithdrawalStatusPending {
				return fmt.Errorf("withdrawal %s is %s: %w", id, w.Status, errConflict)
			}
		case model.WithdrawalStatusPaid:
			if w.Status != model.WithdrawalStatusApproved {
				return fmt.Errorf("withdrawal %s is %s: %w", id, w.Status, errConflict)
			}
		default:
			return fmt.Errorf("unknown withdrawal status %q", status)
		}
		w.Status = status
		return nil
	}
	return fmt.Errorf("withdrawal %s: %w", id, errNotFound)
}

// ---------------------------------------------------------------------------
// Referrals, upgrades
// ---------------------------------------------------------------------------

func (d *Dataset) Referrals() []model.Referral {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Referral(nil), d.referrals...)
}

func (d *Dataset) Upgrades() []model.Upgrade {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Upgrade(nil), d.upgrades...)
}

// ResolveUpgrade approves or rejects a pending level-upgrade payment.
// Approval bumps the member's level and books the payment as earnings.
func (d *Dataset) ResolveUpgrade(id, status string) error {
	if status != model.UpgradeStatusApproved && status != model.UpgradeStatusRejected {
		return fmt.Errorf("unknown upgrade status %q", status)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.upgrades {
		up := &d.upgrades[i]
		if up.ID != id {
			continue
		}
		if up.Status != model.UpgradeStatusPending {
			return fmt.Errorf("upgrade %s is %s: %w", id, up.Status, errConflict)
		}
		up.Status = status
		if status == model.UpgradeStatusApproved {
			d.earnings += up.Amount
			for j := range d.users {
				if d.users[j].Username == up.User {
					d.users[j].Level = up.Level
					break
				}
			}
		}
		return nil
	}
	return fmt.Errorf("upgrade %s: %w", id, errNotFound)
}

// ---------------------------------------------------------------------------
// Admins, emails
// ---------------------------------------------------------------------------

func (d *Dataset) Admins() []model.Admin {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Admin(nil), d.admins...)
}

// UpdateAdmin applies a profile update to the admin with the given email,
// or to the first admin when the email changed.
func (d *Dataset) UpdateAdmin(current string, upd model.ProfileUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.admins {
		if d.admins[i].Email == current {
			d.admins[i].Email = upd.Email
			d.admins[i].Contact = upd.Contact
			return nil
		}
	}
	return fmt.Errorf("admin %s: %w", current, errNotFound)
}

// InviteAdmin records an invitation email. The invited account only exists
// once the invitee completes signup, so the admin list is unchanged.
func (d *Dataset) InviteAdmin(email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, model.EmailLog{
		Type:      "admin-invite",
		Recipient: email,
		Timestamp: time.Now().UTC(),
	})
}

func (d *Dataset) Emails() []model.EmailLog {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.EmailLog(nil), d.emails...)
}
