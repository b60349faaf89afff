package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// RevokedSessionPurger deletes sessions revoked before cutoff.
type RevokedSessionPurger interface {
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TimeoutEventPurger deletes audit events that occurred before cutoff.
type TimeoutEventPurger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewRevokedSessionRetentionJob keeps revoked sessions for the given age.
func NewRevokedSessionRetentionJob(repo RevokedSessionPurger, clock clockwork.Clock, maxAge time.Duration) BatchJob {
	return BatchJobFunc(func(ctx context.Context) (int, error) {
		n, err := repo.DeleteRevokedBefore(ctx, clock.Now().Add(-maxAge))
		return int(n), err
	})
}

// NewTimeoutEventRetentionJob keeps timeout audit events for the given age.
func NewTimeoutEventRetentionJob(repo TimeoutEventPurger, clock clockwork.Clock, maxAge time.Duration) BatchJob {
	return BatchJobFunc(func(ctx context.Context) (int, error) {
		n, err := repo.DeleteBefore(ctx, clock.Now().Add(-maxAge))
		return int(n), err
	})
}
