package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an entry of the session timeout audit trail.
type EventType string

const (
	EventStarted      EventType = "started"
	EventWarned       EventType = "warned"
	EventReset        EventType = "reset"
	EventExtended     EventType = "extended"
	EventExpired      EventType = "expired"
	EventLoggedOut    EventType = "logged_out"
	EventLogoutFailed EventType = "logout_failed"
	EventStopped      EventType = "stopped"
)

// TimeoutEvent is one audit record of a session's timeout lifecycle.
type TimeoutEvent struct {
	ID         string
	SessionID  string
	UserID     string
	TenantID   string
	Type       EventType
	Metadata   map[string]any
	OccurredAt time.Time
}

func NewTimeoutEvent(s *Session, eventType EventType, metadata map[string]any, at time.Time) *TimeoutEvent {
	return &TimeoutEvent{
		ID:         uuid.NewString(),
		SessionID:  s.ID,
		UserID:     s.UserID,
		TenantID:   s.TenantID,
		Type:       eventType,
		Metadata:   metadata,
		OccurredAt: at,
	}
}

// EventRecorder stores the audit trail.
type EventRecorder interface {
	Record(ctx context.Context, event *TimeoutEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*TimeoutEvent, error)
}
