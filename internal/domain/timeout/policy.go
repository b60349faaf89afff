// Package timeout holds the inactivity-timeout domain model: the per-session policy,
// the controller state and the contracts of the collaborators the timeout core reads
// from (tenant configuration, activity sources).
package timeout

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the inactivity period after which a session is signed out.
	DefaultTimeout = 30 * time.Minute

	// DefaultWarningLead is how long before the timeout the user is warned.
	DefaultWarningLead = 2 * time.Minute

	// MaxOverrideMinutes caps tenant override durations (one day).
	MaxOverrideMinutes = 1440
)

// Policy governs one session's inactivity behaviour. It is immutable once resolved.
type Policy struct {
	timeout     time.Duration
	warningLead time.Duration
	enabled     bool
}

// NewPolicy validates and builds a Policy.
// Timeout must be positive and the warning lead must be in [0, timeout).
func NewPolicy(timeout, warningLead time.Duration, enabled bool) (Policy, error) {
	if timeout <= 0 {
		return Policy{}, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidPolicy, timeout)
	}
	if warningLead < 0 {
		return Policy{}, fmt.Errorf("%w: warning lead must not be negative, got %v", ErrInvalidPolicy, warningLead)
	}
	if warningLead >= timeout {
		return Policy{}, fmt.Errorf("%w: warning lead %v must be shorter than timeout %v", ErrInvalidPolicy, warningLead, timeout)
	}
	return Policy{
		timeout:     timeout,
		warningLead: warningLead,
		enabled:     enabled,
	}, nil
}

// DefaultPolicy returns the built-in policy used when no valid tenant override exists.
func DefaultPolicy() Policy {
	return Policy{
		timeout:     DefaultTimeout,
		warningLead: DefaultWarningLead,
		enabled:     true,
	}
}

// Getters
func (p Policy) Timeout() time.Duration     { return p.timeout }
func (p Policy) WarningLead() time.Duration { return p.warningLead }
func (p Policy) Enabled() bool              { return p.enabled }
func (p Policy) TimeoutMs() int64           { return p.timeout.Milliseconds() }
func (p Policy) WarningLeadMs() int64       { return p.warningLead.Milliseconds() }

// WarningAfter is the idle duration at which the warning is raised.
func (p Policy) WarningAfter() time.Duration {
	return p.timeout - p.warningLead
}

// IsZero reports whether p is the zero value (never a valid policy).
func (p Policy) IsZero() bool {
	return p.timeout == 0
}

// Apply merges a tenant override on top of p and validates the result.
// Fields missing from the override keep p's values.
func (p Policy) Apply(o TenantOverride) (Policy, error) {
	timeout := p.timeout
	warningLead := p.warningLead
	enabled := p.enabled

	if o.TimeoutMinutes != nil {
		if *o.TimeoutMinutes > MaxOverrideMinutes {
			return Policy{}, fmt.Errorf("%w: timeout of %d minutes exceeds %d", ErrInvalidPolicy, *o.TimeoutMinutes, MaxOverrideMinutes)
		}
		timeout = time.Duration(*o.TimeoutMinutes) * time.Minute
	}
	if o.WarningMinutes != nil {
		if *o.WarningMinutes > MaxOverrideMinutes {
			return Policy{}, fmt.Errorf("%w: warning of %d minutes exceeds %d", ErrInvalidPolicy, *o.WarningMinutes, MaxOverrideMinutes)
		}
		warningLead = time.Duration(*o.WarningMinutes) * time.Minute
	}
	if o.Enabled != nil {
		enabled = *o.Enabled
	}

	return NewPolicy(timeout, warningLead, enabled)
}

func (p Policy) String() string {
	return fmt.Sprintf("timeout=%v warning_lead=%v enabled=%t", p.timeout, p.warningLead, p.enabled)
}
