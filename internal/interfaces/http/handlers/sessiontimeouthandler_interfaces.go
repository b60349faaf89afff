package handlers

import (
	"context"

	timeoutApp "github.com/zenthea/sessionguard/internal/application/timeout"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// SessionTimeoutService is the session lifecycle API the handler drives.
type SessionTimeoutService interface {
	Start(ctx context.Context, info timeoutApp.SessionInfo) (*timeoutApp.Status, error)
	RecordActivity(ctx context.Context, sessionID string, events []timeout.ActivityEvent) error
	Extend(ctx context.Context, sessionID string) (*timeoutApp.Status, error)
	Status(ctx context.Context, sessionID string) (*timeoutApp.Status, error)
	Stop(ctx context.Context, sessionID string) error
	Subscribe(sessionID string) (<-chan timeoutApp.Notification, func(), error)
}
