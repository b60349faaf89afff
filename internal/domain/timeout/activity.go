package timeout

import "time"

// EventType names a raw user input signal reported by the browser.
type EventType string

const (
	EventPointerMove EventType = "pointermove"
	EventPointerDown EventType = "pointerdown"
	EventKeyDown     EventType = "keydown"
	EventScroll      EventType = "scroll"
	EventTouchStart  EventType = "touchstart"
)

// TrackedEventTypes lists the input signals that count as user activity.
var TrackedEventTypes = []EventType{
	EventPointerMove,
	EventPointerDown,
	EventKeyDown,
	EventScroll,
	EventTouchStart,
}

// IsTracked reports whether t resets the inactivity clock.
func (t EventType) IsTracked() bool {
	switch t {
	case EventPointerMove, EventPointerDown, EventKeyDown, EventScroll, EventTouchStart:
		return true
	default:
		return false
	}
}

// ActivityEvent is one observed input signal for a session.
type ActivityEvent struct {
	SessionID  string
	Type       EventType
	ObservedAt time.Time
}

// ActivitySource delivers raw activity events for one session.
// Subscribe returns a function that removes the handler; calling it more than once is safe.
type ActivitySource interface {
	Subscribe(sessionID string, handler func(ActivityEvent)) (unsubscribe func())
}
