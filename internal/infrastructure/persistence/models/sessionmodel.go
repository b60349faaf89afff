package models

import "time"

// SessionModel represents the database persistence model for sessions.
type SessionModel struct {
	ID             string     `gorm:"primarykey;size:64"`
	UserID         string     `gorm:"size:64;not null;index"`
	TenantID       string     `gorm:"size:64;index"`
	IPAddress      string     `gorm:"size:45"`
	UserAgent      string     `gorm:"size:512"`
	StartedAt      time.Time  `gorm:"not null"`
	LastActivityAt time.Time  `gorm:"not null"`
	RevokedAt      *time.Time `gorm:"index"`
	RevokeReason   string     `gorm:"size:50"`
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}
