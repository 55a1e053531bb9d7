// Package action runs every mutating console operation under one uniform
// policy: validate locally, gate destructive verbs behind an awaited
// confirmation, block duplicate submission while a request is in flight,
// and on success notify and force a re-fetch of the owning resource list.
// The view is never updated ahead of server confirmation.
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dta-platform/adminctl/internal/api"
	"github.com/dta-platform/adminctl/internal/notify"
	"github.com/dta-platform/adminctl/internal/validate"
)

var (
	// ErrDeclined is returned when the operator does not confirm a
	// destructive action. No request is issued.
	ErrDeclined = errors.New("action declined")

	// ErrInFlight is returned when the same action is submitted again
	// before the previous request resolved.
	ErrInFlight = errors.New("action already in flight")
)

// Confirmer is the awaited confirmation capability a destructive action
// requests from its caller. The terminal prompts; tests answer directly.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Action describes one mutation. Call is the only step allowed to touch the
// network; Refresh re-fetches the owning resource list after success.
type Action struct {
	Name    string // unique key for the in-flight guard
	Slot    string // notification slot
	Confirm string // confirmation prompt; empty means not destructive

	Validate func() error                    // optional pre-dispatch rules
	Call     func(ctx context.Context) error // the mutation request
	Refresh  func(ctx context.Context) error // optional post-success re-fetch

	Success string // notification on success
	Failure string // generic notification on failure

	// PreferServerMessage surfaces the server's own error text instead of
	// Failure when the response carried one (login and create-user do
	// this; the rest show the generic message).
	PreferServerMessage bool

	Duration time.Duration // notification auto-hide; zero uses the default
}

// Dispatcher runs actions against a notification surface.
type Dispatcher struct {
	surface *notify.Surface
	confirm Confirmer

	mu       sync.Mutex
	inflight map[string]bool

	// releaseAfter delays the in-flight release on validation failure for
	// the auto-hide window, mirroring the submit control staying disabled
	// until the message clears. Injected in tests.
	releaseAfter func(d time.Duration, fn func())
}

// NewDispatcher creates a Dispatcher. confirm may be nil, in which case
// every destructive action is declined.
func NewDispatcher(surface *notify.Surface, confirm Confirmer) *Dispatcher {
	return &Dispatcher{
		surface:      surface,
		confirm:      confirm,
		inflight:     make(map[string]bool),
		releaseAfter: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Run executes one action under the dispatch policy. The returned error
// reflects what happened; the surface has already been notified.
func (d *Dispatcher) Run(ctx context.Context, a Action) error {
	if !d.acquire(a.Name) {
		return ErrInFlight
	}

	if a.Validate != nil {
		if err := a.Validate(); err != nil {
			var verr *validate.ValidationError
			if errors.As(err, &verr) {
				d.surface.Notify(a.Slot, verr.Message, notify.Error, a.Duration)
				// Keep the action locked out until the message clears.
				dur := a.Duration
				if dur <= 0 {
					dur = notify.DefaultDuration
				}
				d.releaseAfter(dur, func() { d.release(a.Name) })
				return err
			}
			d.release(a.Name)
			return err
		}
	}

	if a.Confirm != "" {
		ok, err := d.confirmed(ctx, a.Confirm)
		if err != nil {
			d.release(a.Name)
			return err
		}
		if !ok {
			d.release(a.Name)
			return ErrDeclined
		}
	}

	err := a.Call(ctx)
	d.release(a.Name)
	if err != nil {
		d.surface.Notify(a.Slot, failureMessage(a, err), notify.Error, a.Duration)
		return err
	}

	d.surface.Notify(a.Slot, a.Success, notify.Success, a.Duration)

	if a.Refresh != nil {
		if err := a.Refresh(ctx); err != nil {
			// The mutation succeeded; the stale-but-last-good snapshot
			// stays on screen.
			return fmt.Errorf("refresh after %s: %w", a.Name, err)
		}
	}
	return nil
}

func (d *Dispatcher) confirmed(ctx context.Context, prompt string) (bool, error) {
	if d.confirm == nil {
		return false, nil
	}
	return d.confirm.Confirm(ctx, prompt)
}

func failureMessage(a Action, err error) string {
	if a.PreferServerMessage {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return httpErr.Message
		}
	}
	if a.Failure != "" {
		return a.Failure
	}
	return "Server error. Please try again."
}

func (d *Dispatcher) acquire(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inflight[name] {
		return false
	}
	d.inflight[name] = true
	return true
}

func (d *Dispatcher) release(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, name)
}
