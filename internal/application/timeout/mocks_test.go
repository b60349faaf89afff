package timeout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zenthea/sessionguard/internal/application/session/usecases"
	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

type mockTenantConfigLoader struct {
	LoadFunc func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error)
	calls    atomic.Int32
}

func (m *mockTenantConfigLoader) LoadTenantTimeoutConfig(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
	m.calls.Add(1)
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, tenantID)
	}
	return nil, timeout.ErrTenantConfigNotFound
}

// mockSessionRepo keeps sessions in memory.
type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*session.Session

	SaveFunc func(ctx context.Context, s *session.Session) error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*session.Session)}
}

func (m *mockSessionRepo) Save(ctx context.Context, s *session.Session) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, sessionID string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, sessionID, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return session.ErrSessionNotFound
	}
	s.Revoke(reason, at)
	return nil
}

func (m *mockSessionRepo) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type mockEventRecorder struct {
	mu     sync.Mutex
	events []*session.TimeoutEvent
}

func (m *mockEventRecorder) Record(ctx context.Context, event *session.TimeoutEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRecorder) ListBySession(ctx context.Context, sessionID string, limit int) ([]*session.TimeoutEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*session.TimeoutEvent
	for _, e := range m.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRecorder) has(t session.EventType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

type mockLogoutExecutor struct {
	ExecuteFunc func(ctx context.Context, cmd usecases.LogoutCommand) error
	calls       atomic.Int32
}

func (m *mockLogoutExecutor) Execute(ctx context.Context, cmd usecases.LogoutCommand) error {
	m.calls.Add(1)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, cmd)
	}
	return nil
}

// fakeActivityBus delivers published events synchronously to local handlers.
type fakeActivityBus struct {
	mu        sync.Mutex
	handlers  map[string]map[int]func(timeout.ActivityEvent)
	next      int
	relay     bool
	published []timeout.ActivityEvent
}

func newFakeActivityBus() *fakeActivityBus {
	return &fakeActivityBus{handlers: make(map[string]map[int]func(timeout.ActivityEvent))}
}

func (b *fakeActivityBus) Subscribe(sessionID string, handler func(timeout.ActivityEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.handlers[sessionID] == nil {
		b.handlers[sessionID] = make(map[int]func(timeout.ActivityEvent))
	}
	b.handlers[sessionID][id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[sessionID], id)
	}
}

func (b *fakeActivityBus) Relays() bool {
	return b.relay
}

func (b *fakeActivityBus) Publish(ctx context.Context, ev timeout.ActivityEvent) error {
	b.mu.Lock()
	b.published = append(b.published, ev)
	var fns []func(timeout.ActivityEvent)
	for _, fn := range b.handlers[ev.SessionID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

func (b *fakeActivityBus) subscribers(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[sessionID])
}

// callbackRecorder counts controller callbacks.
type callbackRecorder struct {
	warnings atomic.Int32
	resets   atomic.Int32
	expired  atomic.Int32
	logouts  atomic.Int32

	mu          sync.Mutex
	lastWarning time.Duration
	order       []string

	logoutErr error
}

func (r *callbackRecorder) callbacks() Callbacks {
	return Callbacks{
		OnWarning: func(remaining time.Duration) {
			r.warnings.Add(1)
			r.mu.Lock()
			r.lastWarning = remaining
			r.order = append(r.order, "warning")
			r.mu.Unlock()
		},
		OnReset: func() {
			r.resets.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "reset")
			r.mu.Unlock()
		},
		OnExpired: func() {
			r.expired.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "expired")
			r.mu.Unlock()
		},
		Logout: func(ctx context.Context) error {
			r.logouts.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "logout")
			r.mu.Unlock()
			return r.logoutErr
		},
	}
}

func (r *callbackRecorder) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *callbackRecorder) warningRemaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastWarning
}
