package timeout

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// DefaultActivityThrottle is the window within which activity updates are coalesced.
const DefaultActivityThrottle = 250 * time.Millisecond

// ActivityTracker records when a session last showed user activity.
//
// The timestamp moves forward on every event, so the countdown derived from it never
// goes up without new activity. Listener fan-out is coalesced to at most one
// notification per throttle window; the first event after a quiet period notifies
// immediately.
type ActivityTracker struct {
	clock    clockwork.Clock
	throttle time.Duration

	mu         sync.Mutex
	last       time.Time
	notifiedAt time.Time

	listenersMu sync.Mutex
	listeners   map[uint64]func(time.Time)
	nextID      uint64
}

// NewActivityTracker creates a tracker whose last activity is "now".
func NewActivityTracker(clock clockwork.Clock, throttle time.Duration) *ActivityTracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if throttle < 0 {
		throttle = 0
	}
	return &ActivityTracker{
		clock:     clock,
		throttle:  throttle,
		last:      clock.Now(),
		listeners: make(map[uint64]func(time.Time)),
	}
}

// Clock returns the time source the tracker measures against.
func (t *ActivityTracker) Clock() clockwork.Clock {
	return t.clock
}

// RecordActivity marks the session as active now. Safe to call at high frequency.
func (t *ActivityTracker) RecordActivity() {
	now := t.clock.Now()

	t.mu.Lock()
	if now.After(t.last) {
		t.last = now
	}
	fanOut := t.notifiedAt.IsZero() || now.Sub(t.notifiedAt) >= t.throttle
	if fanOut {
		t.notifiedAt = now
	}
	t.mu.Unlock()

	if fanOut {
		t.notify(now)
	}
}

// Touch records activity now and notifies listeners, bypassing the throttle.
func (t *ActivityTracker) Touch() {
	now := t.clock.Now()

	t.mu.Lock()
	if now.After(t.last) {
		t.last = now
	}
	t.notifiedAt = now
	t.mu.Unlock()

	t.notify(now)
}

// LastActivityAt returns the most recent activity timestamp.
func (t *ActivityTracker) LastActivityAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Subscribe registers fn to be called after every recorded activity.
// The returned function removes the listener and may be called more than once.
func (t *ActivityTracker) Subscribe(fn func(at time.Time)) (unsubscribe func()) {
	t.listenersMu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.listenersMu.Lock()
			delete(t.listeners, id)
			t.listenersMu.Unlock()
		})
	}
}

func (t *ActivityTracker) listenerCount() int {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	return len(t.listeners)
}

func (t *ActivityTracker) notify(at time.Time) {
	t.listenersMu.Lock()
	fns := make([]func(time.Time), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.listenersMu.Unlock()

	for _, fn := range fns {
		fn(at)
	}
}

// StartTracking observes the tracked input events of sessionID delivered by source.
// Each qualifying event records activity and is then passed to onActivity.
// The returned stop function releases the subscription; it is idempotent.
func (t *ActivityTracker) StartTracking(source timeout.ActivitySource, sessionID string, onActivity func(timeout.ActivityEvent)) (stop func()) {
	var stopped atomic.Bool

	unsubscribe := source.Subscribe(sessionID, func(ev timeout.ActivityEvent) {
		if stopped.Load() || !ev.Type.IsTracked() {
			return
		}
		t.RecordActivity()
		if onActivity != nil {
			onActivity(ev)
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			unsubscribe()
		})
	}
}
