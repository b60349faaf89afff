// Package session models the authenticated sessions whose inactivity is enforced.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRevoked  = errors.New("session revoked")
)

// Revocation reasons.
const (
	RevokeReasonInactivity = "inactivity_timeout"
	RevokeReasonSignedOut  = "signed_out"
)

// Session is a host-platform session registered for inactivity enforcement.
type Session struct {
	ID             string
	UserID         string
	TenantID       string
	IPAddress      string
	UserAgent      string
	StartedAt      time.Time
	LastActivityAt time.Time
	RevokedAt      *time.Time
	RevokeReason   string
	UpdatedAt      time.Time
}

func NewSession(id, userID, tenantID string, now time.Time) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	return &Session{
		ID:             id,
		UserID:         userID,
		TenantID:       tenantID,
		StartedAt:      now,
		LastActivityAt: now,
		UpdatedAt:      now,
	}, nil
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

func (s *Session) UpdateActivity(at time.Time) {
	if at.After(s.LastActivityAt) {
		s.LastActivityAt = at
	}
	s.UpdatedAt = at
}

// Revoke marks the session as signed out. It returns false if it already was.
func (s *Session) Revoke(reason string, at time.Time) bool {
	if s.IsRevoked() {
		return false
	}
	s.RevokedAt = &at
	s.RevokeReason = reason
	s.UpdatedAt = at
	return true
}

// Repository persists sessions.
type Repository interface {
	// Save creates the session or refreshes an existing row with the same ID.
	Save(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, sessionID string) (*Session, error)
	// Revoke sets revoked_at on a live session. Revoking an already revoked session is a no-op.
	Revoke(ctx context.Context, sessionID, reason string, at time.Time) error
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
