package action

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/notify"
	"github.com/dta-platform/adminctl/internal/validate"
)

func newTestDispatcher(t *testing.T, confirm Confirmer) (*Dispatcher, *notify.Surface) {
	t.Helper()
	surface := notify.NewWithTimer(&bytes.Buffer{}, func(d time.Duration, fn func()) notify.Timer {
		return noopTimer{}
	})
	surface.Register("users", "tasks")
	d := NewDispatcher(surface, confirm)
	d.releaseAfter = func(dur time.Duration, fn func()) { fn() }
	return d, surface
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func approve(ctx context.Context, prompt string) (bool, error) { return true, nil }
func decline(ctx context.Context, prompt string) (bool, error) { return false, nil }

func TestRunSuccessNotifiesAndRefreshes(t *testing.T) {
	d, surface := newTestDispatcher(t, nil)

	called, refreshed := false, false
	err := d.Run(context.Background(), Action{
		Name:    "approve-withdrawal",
		Slot:    "users",
		Call:    func(ctx context.Context) error { called = true; return nil },
		Refresh: func(ctx context.Context) error { refreshed = true; return nil },
		Success: "Withdrawal approved successfully",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called || !refreshed {
		t.Errorf("called=%v refreshed=%v, want both true", called, refreshed)
	}
	msg, kind, ok := surface.Visible("users")
	if !ok || kind != notify.Success || msg != "Withdrawal approved successfully" {
		t.Errorf("Visible = %q %q %v", msg, kind, ok)
	}
}

func TestRunDeclinedConfirmationMakesNoCall(t *testing.T) {
	d, _ := newTestDispatcher(t, ConfirmerFunc(decline))

	calls := 0
	err := d.Run(context.Background(), Action{
		Name:    "delete-user",
		Slot:    "users",
		Confirm: "Are you sure you want to delete this user?",
		Call:    func(ctx context.Context) error { calls++; return nil },
	})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("err = %v, want ErrDeclined", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRunNilConfirmerDeclinesDestructive(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	calls := 0
	err := d.Run(context.Background(), Action{
		Name:    "delete-task",
		Slot:    "tasks",
		Confirm: "Are you sure you want to delete this task?",
		Call:    func(ctx context.Context) error { calls++; return nil },
	})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("err = %v, want ErrDeclined", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRunConfirmedDestructiveProceeds(t *testing.T) {
	d, _ := newTestDispatcher(t, ConfirmerFunc(approve))

	calls := 0
	err := d.Run(context.Background(), Action{
		Name:    "delete-user",
		Slot:    "users",
		Confirm: "Are you sure you want to delete this user?",
		Call:    func(ctx context.Context) error { calls++; return nil },
		Success: "User deleted successfully",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunValidationFailureSkipsNetwork(t *testing.T) {
	d, surface := newTestDispatcher(t, nil)

	calls := 0
	err := d.Run(context.Background(), Action{
		Name:     "create-task",
		Slot:     "tasks",
		Validate: func() error { return &validate.ValidationError{Message: "Task title must be at least 3 characters long"} },
		Call:     func(ctx context.Context) error { calls++; return nil },
	})
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	msg, kind, ok := surface.Visible("tasks")
	if !ok || kind != notify.Error || msg != "Task title must be at least 3 characters long" {
		t.Errorf("Visible = %q %q %v", msg, kind, ok)
	}
}

func TestRunFailureNotifiesGenericMessage(t *testing.T) {
	d, surface := newTestDispatcher(t, nil)

	refreshed := false
	err := d.Run(context.Background(), Action{
		Name:    "approve-upgrade",
		Slot:    "users",
		Call:    func(ctx context.Context) error { return &api.HTTPError{Status: 500, Message: "internal detail"} },
		Refresh: func(ctx context.Context) error { refreshed = true; return nil },
		Failure: "Error approving upgrade",
	})
	if err == nil {
		t.Fatal("Run should fail")
	}
	if refreshed {
		t.Error("refresh should not run after failure")
	}
	msg, kind, _ := surface.Visible("users")
	if kind != notify.Error || msg != "Error approving upgrade" {
		t.Errorf("Visible = %q %q, want generic failure message", msg, kind)
	}
}

func TestRunFailurePrefersServerMessageWhenAsked(t *testing.T) {
	d, surface := newTestDispatcher(t, nil)

	err := d.Run(context.Background(), Action{
		Name:                "create-user",
		Slot:                "users",
		Call:                func(ctx context.Context) error { return &api.HTTPError{Status: 409, Message: "Email already registered"} },
		Failure:             "Failed to create user",
		PreferServerMessage: true,
	})
	if err == nil {
		t.Fatal("Run should fail")
	}
	msg, _, _ := surface.Visible("users")
	if msg != "Email already registered" {
		t.Errorf("message = %q, want server message", msg)
	}
}

func TestRunInFlightGuardRejectsDuplicate(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- d.Run(context.Background(), Action{
			Name: "approve-withdrawal",
			Slot: "users",
			Call: func(ctx context.Context) error {
				close(started)
				<-release
				return nil
			},
			Success: "ok",
		})
	}()
	<-started

	err := d.Run(context.Background(), Action{
		Name: "approve-withdrawal",
		Slot: "users",
		Call: func(ctx context.Context) error { return nil },
	})
	if !errors.Is(err, ErrInFlight) {
		t.Fatalf("err = %v, want ErrInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// The guard lifts once the first request resolved.
	if err := d.Run(context.Background(), Action{
		Name:    "approve-withdrawal",
		Slot:    "users",
		Call:    func(ctx context.Context) error { return nil },
		Success: "ok",
	}); err != nil {
		t.Fatalf("Run after release: %v", err)
	}
}

func TestRunRefreshFailureKeepsSuccessNotification(t *testing.T) {
	d, surface := newTestDispatcher(t, nil)

	err := d.Run(context.Background(), Action{
		Name:    "archive-task",
		Slot:    "tasks",
		Call:    func(ctx context.Context) error { return nil },
		Refresh: func(ctx context.Context) error { return errors.New("fetch failed") },
		Success: "Task archived successfully",
	})
	if err == nil {
		t.Fatal("Run should surface the refresh error")
	}
	msg, kind, ok := surface.Visible("tasks")
	if !ok || kind != notify.Success || msg != "Task archived successfully" {
		t.Errorf("Visible = %q %q %v, want success retained", msg, kind, ok)
	}
}
