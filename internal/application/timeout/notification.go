package timeout

import (
	"sync"
	"time"

	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// NotificationType names a push message delivered to a session's browser.
type NotificationType string

const (
	NotificationWarning            NotificationType = "warning"
	NotificationReset              NotificationType = "reset"
	NotificationExtended           NotificationType = "extended"
	NotificationExpired            NotificationType = "expired"
	NotificationSessionInvalidated NotificationType = "session_invalidated"
)

const defaultNotificationBuffer = 16

// Notification is one push message for a session.
type Notification struct {
	Type        NotificationType `json:"type"`
	SessionID   string           `json:"session_id"`
	RemainingMs int64            `json:"remaining_ms"`
	At          time.Time        `json:"at"`
}

// notificationHub fans notifications out to the listeners of each session.
// Slow listeners lose messages rather than block the publisher.
type notificationHub struct {
	buffer int
	logger logger.Interface

	mu     sync.Mutex
	subs   map[string]map[uint64]chan Notification
	nextID uint64
}

func newNotificationHub(buffer int, log logger.Interface) *notificationHub {
	if buffer <= 0 {
		buffer = defaultNotificationBuffer
	}
	return &notificationHub{
		buffer: buffer,
		logger: log,
		subs:   make(map[string]map[uint64]chan Notification),
	}
}

func (h *notificationHub) subscribe(sessionID string) (<-chan Notification, func()) {
	ch := make(chan Notification, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[uint64]chan Notification)
	}
	h.subs[sessionID][id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[sessionID][id]; ok {
			delete(h.subs[sessionID], id)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			close(c)
		}
	}
	return ch, cancel
}

func (h *notificationHub) publish(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[n.SessionID] {
		select {
		case ch <- n:
		default:
			h.logger.Warnw("notification dropped, listener too slow",
				"session_id", n.SessionID,
				"type", n.Type,
			)
		}
	}
}

// closeSession ends every listener of sessionID.
func (h *notificationHub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}

func (h *notificationHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, sessionID)
	}
}
