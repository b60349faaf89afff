package timeout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/application/session/usecases"
	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	apperrors "github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/goroutine"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

const auditTimeout = 5 * time.Second

// ActivityBus carries raw activity events from the HTTP edge to the session's tracker.
type ActivityBus interface {
	timeout.ActivitySource
	Publish(ctx context.Context, event timeout.ActivityEvent) error
}

// activityRelay is implemented by buses that forward events to other instances.
type activityRelay interface {
	Relays() bool
}

// LogoutExecutor performs the forced sign-out of a session.
type LogoutExecutor interface {
	Execute(ctx context.Context, cmd usecases.LogoutCommand) error
}

// SessionInfo identifies the session to enforce.
type SessionInfo struct {
	SessionID string
	UserID    string
	TenantID  string
	IPAddress string
	UserAgent string
}

// Status is the externally visible timeout state of a session.
type Status struct {
	SessionID      string `json:"session_id"`
	State          string `json:"state"`
	RemainingMs    int64  `json:"remaining_ms"`
	TimeoutMs      int64  `json:"timeout_ms"`
	WarningLeadMs  int64  `json:"warning_lead_ms"`
	Enabled        bool   `json:"enabled"`
	TickIntervalMs int64  `json:"tick_interval_ms"`
}

// ServiceConfig tunes the controllers created by the service.
type ServiceConfig struct {
	TickInterval       time.Duration
	ActivityThrottle   time.Duration
	LogoutTimeout      time.Duration
	NotificationBuffer int
}

type sessionEntry struct {
	session      *session.Session
	tracker      *ActivityTracker
	controller   *Controller
	stopTracking func()
}

// Service keeps one tracker and controller per active session.
type Service struct {
	resolver *PolicyResolver
	sessions session.Repository
	events   session.EventRecorder
	logout   LogoutExecutor
	bus      ActivityBus
	hub      *notificationHub
	clock    clockwork.Clock
	cfg      ServiceConfig
	logger   logger.Interface

	mu      sync.Mutex
	entries map[string]*sessionEntry
	closed  bool
}

func NewService(
	resolver *PolicyResolver,
	sessions session.Repository,
	events session.EventRecorder,
	logout LogoutExecutor,
	bus ActivityBus,
	clock clockwork.Clock,
	cfg ServiceConfig,
	log logger.Interface,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.ActivityThrottle < 0 {
		cfg.ActivityThrottle = DefaultActivityThrottle
	}
	if cfg.LogoutTimeout <= 0 {
		cfg.LogoutTimeout = DefaultLogoutTimeout
	}

	return &Service{
		resolver: resolver,
		sessions: sessions,
		events:   events,
		logout:   logout,
		bus:      bus,
		hub:      newNotificationHub(cfg.NotificationBuffer, log),
		clock:    clock,
		cfg:      cfg,
		logger:   log,
		entries:  make(map[string]*sessionEntry),
	}
}

// Start begins enforcing inactivity for a session. Starting a session that is
// already enforced returns its current status.
func (s *Service) Start(ctx context.Context, info SessionInfo) (*Status, error) {
	if info.SessionID == "" || info.UserID == "" {
		return nil, apperrors.NewValidationError("session ID and user ID are required")
	}

	if existing := s.lookup(info.SessionID); existing != nil {
		return s.statusOf(existing), nil
	}

	policy := s.resolver.ResolvePolicy(ctx, info.TenantID)

	sess, err := s.persistSession(ctx, info)
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{session: sess}
	entry.tracker = NewActivityTracker(s.clock, s.cfg.ActivityThrottle)
	entry.controller = NewController(policy, entry.tracker, s.callbacksFor(entry, policy),
		WithTickInterval(s.cfg.TickInterval),
		WithLogoutTimeout(s.cfg.LogoutTimeout),
		WithLogger(s.logger.With("session_id", sess.ID)),
	)
	if s.bus != nil {
		entry.stopTracking = entry.tracker.StartTracking(s.bus, sess.ID, nil)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.dispose(entry)
		return nil, apperrors.NewInternalError("session timeout service is shutting down")
	}
	if existing, ok := s.entries[sess.ID]; ok {
		s.mu.Unlock()
		s.dispose(entry)
		return s.statusOf(existing), nil
	}
	s.entries[sess.ID] = entry
	s.mu.Unlock()

	s.recordAsync(sess, session.EventStarted, map[string]any{
		"timeout_ms":      policy.TimeoutMs(),
		"warning_lead_ms": policy.WarningLeadMs(),
		"enabled":         policy.Enabled(),
	})

	s.logger.Infow("session timeout started",
		"session_id", sess.ID,
		"tenant_id", sess.TenantID,
		"policy", policy.String(),
	)

	return s.statusOf(entry), nil
}

func (s *Service) persistSession(ctx context.Context, info SessionInfo) (*session.Session, error) {
	now := s.clock.Now()

	sess, err := s.sessions.GetByID(ctx, info.SessionID)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		sess, err = session.NewSession(info.SessionID, info.UserID, info.TenantID, now)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	case err != nil:
		s.logger.Errorw("failed to load session", "session_id", info.SessionID, "error", err)
		return nil, apperrors.NewInternalError("failed to load session")
	case sess.IsRevoked():
		return nil, apperrors.NewConflictError("session has been signed out", sess.RevokeReason)
	case sess.UserID != info.UserID:
		return nil, apperrors.NewForbiddenError("session belongs to another user")
	default:
		sess.UpdateActivity(now)
	}

	sess.IPAddress = info.IPAddress
	sess.UserAgent = info.UserAgent

	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Errorw("failed to save session", "session_id", info.SessionID, "error", err)
		return nil, apperrors.NewInternalError("failed to save session")
	}
	return sess, nil
}

func (s *Service) callbacksFor(entry *sessionEntry, policy timeout.Policy) Callbacks {
	sess := entry.session

	return Callbacks{
		OnWarning: func(remaining time.Duration) {
			s.notify(sess.ID, NotificationWarning, remaining)
			s.recordAsync(sess, session.EventWarned, map[string]any{"remaining_ms": remaining.Milliseconds()})
		},
		OnReset: func() {
			s.notify(sess.ID, NotificationReset, policy.Timeout())
			s.recordAsync(sess, session.EventReset, nil)
		},
		OnExpired: func() {
			s.notify(sess.ID, NotificationExpired, 0)
			s.recordAsync(sess, session.EventExpired, nil)
		},
		Logout: func(ctx context.Context) error {
			// Dispose waits for the controller loop, which is running this callback.
			defer goroutine.SafeGo(s.logger, "session-timeout-cleanup", func() {
				s.remove(sess.ID, entry)
			})

			err := s.logout.Execute(ctx, usecases.LogoutCommand{
				SessionID: sess.ID,
				Reason:    session.RevokeReasonInactivity,
			})
			if err != nil {
				s.recordAsync(sess, session.EventLogoutFailed, map[string]any{"error": err.Error()})
				return err
			}

			s.notify(sess.ID, NotificationSessionInvalidated, 0)
			s.recordAsync(sess, session.EventLoggedOut, nil)
			return nil
		},
	}
}

// RecordActivity forwards browser input events to the session's tracker.
func (s *Service) RecordActivity(ctx context.Context, sessionID string, events []timeout.ActivityEvent) error {
	if len(events) == 0 {
		return apperrors.NewValidationError("at least one activity event is required")
	}

	entry := s.lookup(sessionID)
	if entry == nil {
		// Another instance may own the controller; let the relay carry the events there.
		if !s.relaysActivity() {
			return apperrors.NewNotFoundError("session is not tracked", sessionID)
		}
		if err := s.checkRemoteSession(ctx, sessionID); err != nil {
			return err
		}
	}

	now := s.clock.Now()
	for _, ev := range events {
		ev.SessionID = sessionID
		if ev.ObservedAt.IsZero() {
			ev.ObservedAt = now
		}
		if s.bus == nil {
			if ev.Type.IsTracked() {
				entry.tracker.RecordActivity()
			}
			continue
		}
		if err := s.bus.Publish(ctx, ev); err != nil {
			s.logger.Warnw("failed to publish activity event",
				"session_id", sessionID,
				"type", ev.Type,
				"error", err,
			)
		}
	}
	return nil
}

// Extend resets the inactivity clock at the user's explicit request.
func (s *Service) Extend(ctx context.Context, sessionID string) (*Status, error) {
	entry := s.lookup(sessionID)
	if entry == nil {
		if s.isRevoked(ctx, sessionID) {
			return nil, apperrors.NewConflictError("session has expired")
		}
		return nil, apperrors.NewNotFoundError("session is not tracked", sessionID)
	}
	if entry.controller.State() == timeout.StateExpired {
		return nil, apperrors.NewConflictError("session has expired")
	}

	entry.controller.Extend()

	status := s.statusOf(entry)
	s.notify(sessionID, NotificationExtended, time.Duration(status.RemainingMs)*time.Millisecond)
	s.recordAsync(entry.session, session.EventExtended, nil)

	return status, nil
}

// Status reports the timeout state of a session. A session that has been signed
// out is reported as expired.
func (s *Service) Status(ctx context.Context, sessionID string) (*Status, error) {
	if entry := s.lookup(sessionID); entry != nil {
		return s.statusOf(entry), nil
	}

	if s.isRevoked(ctx, sessionID) {
		return &Status{
			SessionID: sessionID,
			State:     timeout.StateExpired.String(),
		}, nil
	}
	return nil, apperrors.NewNotFoundError("session is not tracked", sessionID)
}

// Stop ends enforcement for a session the host has signed out itself.
func (s *Service) Stop(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	entry, ok := s.entries[sessionID]
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError("session is not tracked", sessionID)
	}

	s.remove(sessionID, entry)
	s.recordAsync(entry.session, session.EventStopped, nil)

	s.logger.Infow("session timeout stopped", "session_id", sessionID)
	return nil
}

// Subscribe returns the notification stream of a session. The channel is closed
// when the session stops being enforced or cancel is called.
func (s *Service) Subscribe(sessionID string) (<-chan Notification, func(), error) {
	if s.lookup(sessionID) == nil {
		return nil, nil, apperrors.NewNotFoundError("session is not tracked", sessionID)
	}
	ch, cancel := s.hub.subscribe(sessionID)
	return ch, cancel, nil
}

// ActiveSessions returns the number of sessions currently enforced.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Shutdown disposes every controller. The service rejects new sessions afterwards.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.closed = true
	entries := s.entries
	s.entries = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, entry := range entries {
		s.dispose(entry)
	}
	s.hub.closeAll()

	s.logger.Infow("session timeout service stopped", "disposed", len(entries))
}

func (s *Service) lookup(sessionID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[sessionID]
}

// remove drops entry from the registry if it is still the registered one.
func (s *Service) remove(sessionID string, entry *sessionEntry) {
	s.mu.Lock()
	if current, ok := s.entries[sessionID]; ok && current == entry {
		delete(s.entries, sessionID)
	}
	s.mu.Unlock()

	s.dispose(entry)
	s.hub.closeSession(sessionID)
}

func (s *Service) dispose(entry *sessionEntry) {
	if entry.stopTracking != nil {
		entry.stopTracking()
	}
	entry.controller.Dispose()
}

func (s *Service) relaysActivity() bool {
	r, ok := s.bus.(activityRelay)
	return ok && r.Relays()
}

func (s *Service) checkRemoteSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return apperrors.NewNotFoundError("session is not tracked", sessionID)
		}
		return apperrors.NewInternalError("failed to load session", err.Error())
	}
	if sess.IsRevoked() {
		return apperrors.NewConflictError("session has expired")
	}
	return nil
}

func (s *Service) isRevoked(ctx context.Context, sessionID string) bool {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false
	}
	return sess.IsRevoked()
}

func (s *Service) statusOf(entry *sessionEntry) *Status {
	policy := entry.controller.Policy()
	return &Status{
		SessionID:      entry.session.ID,
		State:          entry.controller.State().String(),
		RemainingMs:    entry.controller.TimeRemaining().Milliseconds(),
		TimeoutMs:      policy.TimeoutMs(),
		WarningLeadMs:  policy.WarningLeadMs(),
		Enabled:        policy.Enabled(),
		TickIntervalMs: entry.controller.TickInterval().Milliseconds(),
	}
}

func (s *Service) notify(sessionID string, t NotificationType, remaining time.Duration) {
	s.hub.publish(Notification{
		Type:        t,
		SessionID:   sessionID,
		RemainingMs: remaining.Milliseconds(),
		At:          s.clock.Now(),
	})
}

func (s *Service) recordAsync(sess *session.Session, t session.EventType, metadata map[string]any) {
	if s.events == nil {
		return
	}
	event := session.NewTimeoutEvent(sess, t, metadata, s.clock.Now())

	goroutine.SafeGo(s.logger, "session-timeout-audit", func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		if err := s.events.Record(ctx, event); err != nil {
			s.logger.Warnw("failed to record session timeout event",
				"session_id", event.SessionID,
				"type", event.Type,
				"error", fmt.Errorf("record %s: %w", event.Type, err),
			)
		}
	})
}
