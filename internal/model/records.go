package model

import "time"

// User statuses as reported by the platform API.
const (
	UserStatusActive    = "active"
	UserStatusPending   = "pending"
	UserStatusSuspended = "suspended"
	UserStatusVerified  = "verified"
)

// UserStatuses lists every status the admin console may set on a user.
var UserStatuses = []string{UserStatusActive, UserStatusPending, UserStatusSuspended, UserStatusVerified}

// ValidUserStatus reports whether s is one of the recognized user statuses.
func ValidUserStatus(s string) bool {
	for _, v := range UserStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// User is a platform member as returned by /api/admin/users. Records are
// fetched fresh per command and never cached across invocations; the server
// remains the source of truth.
type User struct {
	ID               string     `json:"_id"`
	Name             string     `json:"name"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Level            int        `json:"level"`
	Status           string     `json:"status"`
	Invites          int        `json:"invites,omitempty"`
	TasksCompleted   int        `json:"tasksCompleted,omitempty"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
}

// NewUser is the payload for creating a user through /api/auth/signup.
// Amount must follow the level fee schedule (see UpgradeAmount).
type NewUser struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode,omitempty"`
	Level        int    `json:"level"`
	Amount       int64  `json:"amount"`
}

// Task statuses.
const (
	TaskStatusActive   = "active"
	TaskStatusArchived = "archived"
)

// Task is a completable platform task.
type Task struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Completions int    `json:"completions"`
	Status      string `json:"status"`
}

// NewTask is the payload for POST /api/admin/tasks. New tasks always start
// active.
type NewTask struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Withdrawal statuses.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusDeclined = "declined"
	WithdrawalStatusPaid     = "paid"
)

// Withdrawal is a member payout request. The list endpoint identifies the
// requesting member via UserID; there is no separate display-name field.
type Withdrawal struct {
	ID     string    `json:"_id"`
	UserID string    `json:"userId"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// Referral aggregates one member's referral activity.
type Referral struct {
	User          string `json:"user"`
	ReferralCount int    `json:"referralCount"`
	BonusPaid     int64  `json:"bonusPaid"`
	IsSuspicious  bool   `json:"isSuspicious"`
}

// Upgrade statuses.
const (
	UpgradeStatusPending  = "pending"
	UpgradeStatusApproved = "approved"
	UpgradeStatusRejected = "rejected"
)

// Upgrade is a pending level-upgrade payment awaiting review.
type Upgrade struct {
	ID     string `json:"_id"`
	User   string `json:"user"`
	Level  int    `json:"level"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// Admin is a console administrator account.
type Admin struct {
	ID      string `json:"_id,omitempty"`
	Email   string `json:"email"`
	Contact string `json:"contact,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// ProfileUpdate is the payload for PUT /api/admin/profile.
type ProfileUpdate struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Contact  string `json:"contact"`
}

// EmailLog is one entry of the outbound email audit trail.
type EmailLog struct {
	Type      string    `json:"type"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
}

// Credentials is the login payload for POST /api/admin/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the login response; Token is the bearer credential for all
// subsequent requests.
type LoginResult struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// Broadcast is the payload for POST /api/admin/notifications.
type Broadcast struct {
	Message string `json:"message"`
}
