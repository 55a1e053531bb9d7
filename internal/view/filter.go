// Package view turns fetched resource snapshots into terminal output:
// client-side filtering, table projection, currency formatting, and CSV
// export. Filtering never touches the server; it is a pure transform over
// the last fetched snapshot.
package view

import (
	"strconv"
	"strings"

	"github.com/dta-platform/adminctl/internal/model"
)

// Fields is a record's filterable projection: field name to string value.
type Fields map[string]string

// Criteria is one list view's transient filter state. Text fields match by
// case-insensitive substring, Exact fields by equality; empty criteria
// match everything. Matching is conjunctive across all entries.
type Criteria struct {
	Text  map[string]string
	Exact map[string]string
}

// Empty reports whether the criteria constrain nothing.
func (c Criteria) Empty() bool {
	return len(c.Text) == 0 && len(c.Exact) == 0
}

// Matches reports whether a record's field projection satisfies every
// criterion. Fields the record does not carry never match a non-empty
// criterion.
func (c Criteria) Matches(f Fields) bool {
	for k, want := range c.Text {
		if want == "" {
			continue
		}
		got, ok := f[k]
		if !ok || !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			return false
		}
	}
	for k, want := range c.Exact {
		if want == "" {
			continue
		}
		if got, ok := f[k]; !ok || got != want {
			return false
		}
	}
	return true
}

// Filter returns the records whose projection satisfies the criteria. The
// input slice is never mutated.
func Filter[T any](records []T, c Criteria, project func(T) Fields) []T {
	if c.Empty() {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if c.Matches(project(r)) {
			out = append(out, r)
		}
	}
	return out
}

// UserFields projects a user for filtering: name (text), level and status
// (exact).
func UserFields(u model.User) Fields {
	return Fields{
		"name":     u.Name,
		"username": u.Username,
		"email":    u.Email,
		"level":    strconv.Itoa(u.Level),
		"status":   u.Status,
	}
}

// TaskFields projects a task for filtering.
func TaskFields(t model.Task) Fields {
	return Fields{
		"title":  t.Title,
		"status": t.Status,
	}
}

// WithdrawalFields projects a withdrawal for filtering.
func WithdrawalFields(w model.Withdrawal) Fields {
	return Fields{
		"user":   w.UserID,
		"status": w.Status,
	}
}

// ReferralFields projects a referral for filtering: user (text).
func ReferralFields(r model.Referral) Fields {
	return Fields{
		"user": r.User,
	}
}

// EmailFields projects an email log entry for filtering: type (exact).
func EmailFields(e model.EmailLog) Fields {
	return Fields{
		"type":      e.Type,
		"recipient": e.Recipient,
	}
}
