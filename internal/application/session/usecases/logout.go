package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

type LogoutCommand struct {
	SessionID string
	Reason    string
}

// LogoutUseCase revokes a session so the host platform rejects it from now on.
type LogoutUseCase struct {
	sessionRepo session.Repository
	clock       clockwork.Clock
	logger      logger.Interface
}

func NewLogoutUseCase(sessionRepo session.Repository, clock clockwork.Clock, logger logger.Interface) *LogoutUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LogoutUseCase{
		sessionRepo: sessionRepo,
		clock:       clock,
		logger:      logger,
	}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, cmd LogoutCommand) error {
	if cmd.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	reason := cmd.Reason
	if reason == "" {
		reason = session.RevokeReasonSignedOut
	}

	if err := uc.sessionRepo.Revoke(ctx, cmd.SessionID, reason, uc.clock.Now()); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			uc.logger.Warnw("session to revoke not found", "session_id", cmd.SessionID)
		} else {
			uc.logger.Errorw("failed to revoke session", "error", err, "session_id", cmd.SessionID)
		}
		return fmt.Errorf("failed to logout: %w", err)
	}

	uc.logger.Infow("session revoked", "session_id", cmd.SessionID, "reason", reason)

	return nil
}
