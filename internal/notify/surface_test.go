package notify

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock schedules timers on a manual timeline; Advance fires everything
// due at or before the new now.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

func (c *fakeClock) factory(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func newTestSurface(out io.Writer) (*Surface, *fakeClock) {
	clock := &fakeClock{}
	s := NewWithTimer(out, clock.factory)
	s.Register("user-notification", "task-notification")
	return s, clock
}

func TestNotifyAutoHides(t *testing.T) {
	s, clock := newTestSurface(nil)

	s.Notify("user-notification", "User deleted", Success, 3*time.Second)
	if msg, kind, ok := s.Visible("user-notification"); !ok || msg != "User deleted" || kind != Success {
		t.Fatalf("Visible = %q,%q,%v", msg, kind, ok)
	}

	clock.Advance(2999 * time.Millisecond)
	if _, _, ok := s.Visible("user-notification"); !ok {
		t.Fatal("message hidden before its duration elapsed")
	}

	clock.Advance(time.Millisecond)
	if _, _, ok := s.Visible("user-notification"); ok {
		t.Fatal("message still visible after 3s")
	}
}

// A second message arriving at t=1s resets dismissal to t=4s.
func TestNotifyLastWriteWinsAndResetsTimer(t *testing.T) {
	s, clock := newTestSurface(nil)

	s.Notify("user-notification", "first", Success, 3*time.Second)
	clock.Advance(time.Second)
	s.Notify("user-notification", "second", Error, 3*time.Second)

	// t=3s: the first message's deadline; the second must survive it.
	clock.Advance(2 * time.Second)
	msg, kind, ok := s.Visible("user-notification")
	if !ok || msg != "second" || kind != Error {
		t.Fatalf("at t=3s: Visible = %q,%q,%v; want second message still showing", msg, kind, ok)
	}

	// t=4s: the second message expires.
	clock.Advance(time.Second)
	if _, _, ok := s.Visible("user-notification"); ok {
		t.Fatal("second message still visible at t=4s")
	}
}

func TestNotifyUnknownSlotIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestSurface(&buf)

	s.Notify("missing-slot", "hello", Success, time.Second)
	if _, _, ok := s.Visible("missing-slot"); ok {
		t.Fatal("unregistered slot became visible")
	}
	if buf.Len() != 0 {
		t.Errorf("unregistered slot wrote output: %q", buf.String())
	}
}

func TestNotifySlotsAreIndependent(t *testing.T) {
	s, clock := newTestSurface(nil)

	s.Notify("user-notification", "users msg", Success, time.Second)
	s.Notify("task-notification", "tasks msg", Success, 5*time.Second)

	clock.Advance(2 * time.Second)
	if _, _, ok := s.Visible("user-notification"); ok {
		t.Error("user slot should be hidden")
	}
	if msg, _, ok := s.Visible("task-notification"); !ok || msg != "tasks msg" {
		t.Errorf("task slot: %q,%v; want still visible", msg, ok)
	}
}

func TestNotifyWritesStyledLine(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestSurface(&buf)

	s.Notify("user-notification", "User deleted", Success, time.Second)
	s.Notify("task-notification", "Error adding task", Error, time.Second)

	out := buf.String()
	if !strings.Contains(out, "[user-notification] ✓ User deleted") {
		t.Errorf("missing success line in %q", out)
	}
	if !strings.Contains(out, "[task-notification] ✗ Error adding task") {
		t.Errorf("missing error line in %q", out)
	}
}
