// Package notify implements the console's notification surface: named
// slots that each show at most one transient status message, auto-hidden
// after a fixed delay. A new message pre-empts the pending hide timer, so
// the dismissal clock always restarts from the latest message.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind classifies a message for styling.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// DefaultDuration is the auto-hide delay used when a caller passes zero.
const DefaultDuration = 3 * time.Second

// Timer is the stoppable handle the surface keeps per slot.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d. Production uses time.AfterFunc; tests
// inject a manual clock.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type slot struct {
	visible bool
	message string
	kind    Kind
	timer   Timer
	gen     uint64 // invalidates hide callbacks from replaced timers
}

// Surface owns a set of named notification slots. Notify on a slot that was
// never registered is a documented silent no-op: commands share surface
// wiring and not every slot exists on every screen.
type Surface struct {
	mu       sync.Mutex
	out      io.Writer
	slots    map[string]*slot
	newTimer TimerFactory
}

// New creates a Surface writing styled messages to out.
func New(out io.Writer) *Surface {
	return &Surface{
		out:      out,
		slots:    make(map[string]*slot),
		newTimer: realTimer,
	}
}

// NewWithTimer creates a Surface with an injected timer factory.
func NewWithTimer(out io.Writer, tf TimerFactory) *Surface {
	s := New(out)
	s.newTimer = tf
	return s
}

// Register creates the named slots. Registering an existing slot is a no-op.
func (s *Surface) Register(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.slots[id]; !ok {
			s.slots[id] = &slot{}
		}
	}
}

// Notify shows a message on the slot and schedules its auto-hide. The last
// write wins: any pending hide timer is cancelled and replaced. Unknown
// slots are ignored.
func (s *Surface) Notify(slotID, message string, kind Kind, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultDuration
	}

	s.mu.Lock()
	sl, ok := s.slots[slotID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.visible = true
	sl.message = message
	sl.kind = kind
	sl.gen++
	gen := sl.gen
	sl.timer = s.newTimer(duration, func() { s.hide(slotID, gen) })
	out := s.out
	s.mu.Unlock()

	if out != nil {
		mark := "✓"
		if kind == Error {
			mark = "✗"
		}
		fmt.Fprintf(out, "[%s] %s %s\n", slotID, mark, message)
	}
}

// hide clears the slot unless a newer message has replaced the one that
// scheduled this callback.
func (s *Surface) hide(slotID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok || sl.gen != gen {
		return
	}
	sl.visible = false
	sl.message = ""
	sl.timer = nil
}

// Visible returns the slot's current message, if one is showing.
func (s *Surface) Visible(slotID string) (message string, kind Kind, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, exists := s.slots[slotID]
	if !exists || !sl.visible {
		return "", "", false
	}
	return sl.message, sl.kind, true
}
