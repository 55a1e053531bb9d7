// Package validate holds the client-side form rules every mutating command
// applies before dispatch. A failed rule short-circuits with a
// ValidationError and no network call is made.
package validate

import (
	"regexp"

	"github.com/dta-platform/adminctl/internal/model"
)

// ValidationError is a pre-dispatch input rejection. Message is shown to
// the operator verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func fail(msg string) error { return &ValidationError{Message: msg} }

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlRe   = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

// Email checks the address shape.
func Email(v string) error {
	if !emailRe.MatchString(v) {
		return fail("Please enter a valid email address")
	}
	return nil
}

// URL checks a task link's shape; the scheme is optional.
func URL(v string) error {
	if v == "" || !urlRe.MatchString(v) {
		return fail("Please enter a valid URL")
	}
	return nil
}

// Login checks the login form: both fields required.
func Login(email, password string) error {
	if email == "" || password == "" {
		return fail("Please fill all required fields")
	}
	return nil
}

// NewUser checks the create-user form: all fields and a level are required,
// and the email must be well-formed.
func NewUser(nu model.NewUser) error {
	if nu.Name == "" || nu.Username == "" || nu.Email == "" || nu.Phone == "" || nu.Password == "" || nu.Level < 1 {
		return fail("Please fill in all required fields")
	}
	return Email(nu.Email)
}

// NewTask checks the create-task form: a title of at least three characters
// and a well-formed link.
func NewTask(nt model.NewTask) error {
	if len(nt.Title) < 3 {
		return fail("Task title must be at least 3 characters long")
	}
	return URL(nt.Link)
}

// Profile checks the profile update form: valid email plus a contact number
// of at least ten digits.
func Profile(upd model.ProfileUpdate) error {
	if err := Email(upd.Email); err != nil {
		return err
	}
	if len(upd.Contact) < 10 {
		return fail("Contact number must be at least 10 digits")
	}
	return nil
}

// Invite checks the admin invite form.
func Invite(email string) error {
	if email == "" {
		return fail("Please enter an email address")
	}
	return Email(email)
}

// UserStatus checks a status-change value against the recognized set.
func UserStatus(status string) error {
	if !model.ValidUserStatus(status) {
		return fail("Unknown user status: " + status)
	}
	return nil
}
