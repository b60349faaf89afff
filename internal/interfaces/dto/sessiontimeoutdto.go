package dto

import (
	"time"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// ActivityEventRequest is one input event reported by the browser.
type ActivityEventRequest struct {
	Type string `json:"type" validate:"required,max=32"`
	// ObservedAt is the client's Unix time in milliseconds. Optional.
	ObservedAt int64 `json:"observed_at,omitempty" validate:"gte=0"`
}

// RecordActivityRequest batches the events seen since the previous report.
type RecordActivityRequest struct {
	Events []ActivityEventRequest `json:"events" validate:"required,min=1,max=100,dive"`
}

// ToActivityEvents converts the request. Client timestamps are ignored when they
// lie in the future relative to now.
func (r RecordActivityRequest) ToActivityEvents(sessionID string, now time.Time) []timeout.ActivityEvent {
	events := make([]timeout.ActivityEvent, 0, len(r.Events))
	for _, e := range r.Events {
		observed := now
		if e.ObservedAt > 0 {
			if t := time.UnixMilli(e.ObservedAt); !t.After(now) {
				observed = t
			}
		}
		events = append(events, timeout.ActivityEvent{
			SessionID:  sessionID,
			Type:       timeout.EventType(e.Type),
			ObservedAt: observed,
		})
	}
	return events
}
