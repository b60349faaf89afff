package timeout

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/goroutine"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

const (
	// DefaultTickInterval is how often the controller compares idle time with the policy.
	DefaultTickInterval = time.Second

	// DefaultLogoutTimeout bounds the forced logout call.
	DefaultLogoutTimeout = 10 * time.Second
)

// Callbacks are invoked by the controller on state transitions. They run on the
// controller's goroutine (or the goroutine reporting activity) and must not call
// back into the same controller synchronously.
type Callbacks struct {
	// OnWarning fires once per entry into the warned state.
	OnWarning func(remaining time.Duration)
	// OnReset fires when activity returns a warned session to active.
	OnReset func()
	// OnExpired fires once, right before Logout.
	OnExpired func()
	// Logout performs the forced sign-out. Its failure is logged, never retried.
	Logout func(ctx context.Context) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithTickInterval sets the check interval.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogoutTimeout bounds how long the Logout callback may run.
func WithLogoutTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.logoutTimeout = d
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l logger.Interface) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the inactivity state machine of one session.
//
// It ticks on a fixed interval and compares the wall-clock time since the tracker's
// last activity with the policy: crossing Timeout-WarningLead raises one warning,
// crossing Timeout expires the session and fires the logout exactly once.
// A disabled policy makes the controller inert.
type Controller struct {
	policy        timeout.Policy
	tracker       *ActivityTracker
	callbacks     Callbacks
	clock         clockwork.Clock
	interval      time.Duration
	logoutTimeout time.Duration
	logger        logger.Interface

	mu          sync.Mutex
	state       timeout.State
	disposed    bool
	unsubscribe func()
	stop        chan struct{}
	stopOnce    sync.Once

	// cbMu serialises callbacks with each other and with Dispose.
	cbMu sync.Mutex
}

// NewController creates a controller and, if the policy is enabled, starts ticking.
func NewController(policy timeout.Policy, tracker *ActivityTracker, callbacks Callbacks, opts ...Option) *Controller {
	c := &Controller{
		policy:        policy,
		tracker:       tracker,
		callbacks:     callbacks,
		clock:         tracker.Clock(),
		interval:      DefaultTickInterval,
		logoutTimeout: DefaultLogoutTimeout,
		logger:        logger.NewLogger(),
		state:         timeout.StateActive,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !policy.Enabled() {
		return c
	}

	// The interval must stay below the warning lead or the warning could be skipped.
	if lead := policy.WarningLead(); lead > 0 && c.interval >= lead {
		c.interval = lead / 2
		if c.interval <= 0 {
			c.interval = lead
		}
	}

	c.unsubscribe = tracker.Subscribe(c.onActivity)
	c.stop = make(chan struct{})

	ticker := c.clock.NewTicker(c.interval)
	goroutine.SafeGo(c.logger, "timeout-controller", func() {
		c.loop(ticker)
	})

	return c
}

func (c *Controller) loop(ticker clockwork.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.Chan():
			c.Tick()
		}
	}
}

// Tick runs one check of idle time against the policy. The ticking loop calls it on
// every interval; calling it directly is safe.
func (c *Controller) Tick() {
	if !c.policy.Enabled() {
		return
	}

	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if c.disposed || c.state == timeout.StateExpired {
		c.mu.Unlock()
		return
	}

	elapsed := c.clock.Since(c.tracker.LastActivityAt())

	var fire func()
	switch {
	case elapsed >= c.policy.Timeout():
		c.state = timeout.StateExpired
		c.stopTickingLocked()
		c.unsubscribeLocked()
		fire = c.expire
	case elapsed >= c.policy.WarningAfter():
		if c.state == timeout.StateActive {
			c.state = timeout.StateWarned
			remaining := c.policy.Timeout() - elapsed
			fire = func() { c.warn(remaining) }
		}
	default:
		if c.state == timeout.StateWarned {
			c.state = timeout.StateActive
			fire = c.reset
		}
	}
	c.mu.Unlock()

	if fire != nil {
		fire()
	}
}

func (c *Controller) onActivity(time.Time) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if c.disposed || c.state != timeout.StateWarned {
		c.mu.Unlock()
		return
	}
	c.state = timeout.StateActive
	c.mu.Unlock()

	c.reset()
}

func (c *Controller) warn(remaining time.Duration) {
	if c.callbacks.OnWarning != nil {
		c.callbacks.OnWarning(remaining)
	}
}

func (c *Controller) reset() {
	if c.callbacks.OnReset != nil {
		c.callbacks.OnReset()
	}
}

func (c *Controller) expire() {
	if c.callbacks.OnExpired != nil {
		c.callbacks.OnExpired()
	}
	if c.callbacks.Logout == nil {
		c.logger.Warnw("session expired without a logout handler")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.logoutTimeout)
	defer cancel()

	if err := c.callbacks.Logout(ctx); err != nil {
		c.logger.Errorw("forced logout failed", "error", err)
	}
}

// Extend counts as fresh activity right now. It is a no-op once the session
// has expired or the controller has been disposed.
func (c *Controller) Extend() {
	c.mu.Lock()
	if c.disposed || c.state == timeout.StateExpired {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.tracker.Touch()
}

// State returns the current state. A disabled controller is always active.
func (c *Controller) State() timeout.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TimeRemaining returns the time left before expiry, never negative.
func (c *Controller) TimeRemaining() time.Duration {
	if !c.policy.Enabled() {
		return c.policy.Timeout()
	}
	if c.State() == timeout.StateExpired {
		return 0
	}

	remaining := c.policy.Timeout() - c.clock.Since(c.tracker.LastActivityAt())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Policy returns the policy the controller enforces.
func (c *Controller) Policy() timeout.Policy {
	return c.policy
}

// TickInterval returns the effective check interval.
func (c *Controller) TickInterval() time.Duration {
	return c.interval
}

// Dispose stops ticking and detaches from the tracker. When it returns no callback is
// running and none will run again. Safe to call multiple times.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.stopTickingLocked()
	c.unsubscribeLocked()
	c.mu.Unlock()

	// Wait out a callback that was already running.
	c.cbMu.Lock()
	c.cbMu.Unlock() //nolint:staticcheck
}

func (c *Controller) stopTickingLocked() {
	if c.stop == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Controller) unsubscribeLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
