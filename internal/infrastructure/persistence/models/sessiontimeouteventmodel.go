package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionTimeoutEventModel is one row of the session timeout audit trail.
type SessionTimeoutEventModel struct {
	ID         string         `gorm:"primarykey;size:36"`
	SessionID  string         `gorm:"size:64;not null;index:idx_session_occurred"`
	UserID     string         `gorm:"size:64;not null"`
	TenantID   string         `gorm:"size:64;index"`
	EventType  string         `gorm:"size:30;not null"`
	Metadata   datatypes.JSON `gorm:"type:json"`
	OccurredAt time.Time      `gorm:"not null;index:idx_session_occurred"`
}

// TableName specifies the table name for GORM
func (SessionTimeoutEventModel) TableName() string {
	return "session_timeout_events"
}
