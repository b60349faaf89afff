// Package setting models per-tenant configuration entries stored as typed key/value rows.
package setting

import (
	"fmt"
	"strconv"
	"time"
)

// ValueType defines the type of a setting value
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeInt    ValueType = "int"
	ValueTypeBool   ValueType = "bool"
)

// Category and keys of the session timeout override.
const (
	CategorySessionTimeout = "session_timeout"

	KeyTimeoutMinutes = "timeout_minutes"
	KeyWarningMinutes = "warning_minutes"
	KeyEnabled        = "enabled"
)

// TenantSetting is one configuration value owned by a tenant.
type TenantSetting struct {
	id        uint
	tenantID  string
	category  string
	key       string
	value     string
	valueType ValueType
	updatedBy string
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewTenantSetting creates an empty setting of the given type.
func NewTenantSetting(tenantID, category, key string, valueType ValueType, now time.Time) (*TenantSetting, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if key == "" {
		return nil, ErrInvalidSettingKey
	}
	if !isValidValueType(valueType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValueType, valueType)
	}

	return &TenantSetting{
		tenantID:  tenantID,
		category:  category,
		key:       key,
		valueType: valueType,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTenantSetting rebuilds a setting from persistence.
func ReconstructTenantSetting(
	id uint,
	tenantID, category, key, value string,
	valueType ValueType,
	updatedBy string,
	version int,
	createdAt, updatedAt time.Time,
) *TenantSetting {
	return &TenantSetting{
		id:        id,
		tenantID:  tenantID,
		category:  category,
		key:       key,
		value:     value,
		valueType: valueType,
		updatedBy: updatedBy,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters
func (s *TenantSetting) ID() uint             { return s.id }
func (s *TenantSetting) TenantID() string     { return s.tenantID }
func (s *TenantSetting) Category() string     { return s.category }
func (s *TenantSetting) Key() string          { return s.key }
func (s *TenantSetting) Value() string        { return s.value }
func (s *TenantSetting) ValueType() ValueType { return s.valueType }
func (s *TenantSetting) UpdatedBy() string    { return s.updatedBy }
func (s *TenantSetting) Version() int         { return s.version }
func (s *TenantSetting) CreatedAt() time.Time { return s.createdAt }
func (s *TenantSetting) UpdatedAt() time.Time { return s.updatedAt }

// SetID sets the setting ID (only for persistence layer use)
func (s *TenantSetting) SetID(id uint) {
	s.id = id
}

func (s *TenantSetting) HasValue() bool {
	return s.value != ""
}

// GetIntValue returns the value as an integer
func (s *TenantSetting) GetIntValue() (int, error) {
	if s.value == "" {
		return 0, nil
	}
	return strconv.Atoi(s.value)
}

// GetBoolValue returns the value as a boolean
func (s *TenantSetting) GetBoolValue() (bool, error) {
	if s.value == "" {
		return false, nil
	}
	return strconv.ParseBool(s.value)
}

// SetIntValue sets the value as an integer
func (s *TenantSetting) SetIntValue(value int, updatedBy string, now time.Time) error {
	if s.valueType != ValueTypeInt {
		return fmt.Errorf("%w: expected %s, got int", ErrInvalidValueType, s.valueType)
	}
	s.touch(strconv.Itoa(value), updatedBy, now)
	return nil
}

// SetBoolValue sets the value as a boolean
func (s *TenantSetting) SetBoolValue(value bool, updatedBy string, now time.Time) error {
	if s.valueType != ValueTypeBool {
		return fmt.Errorf("%w: expected %s, got bool", ErrInvalidValueType, s.valueType)
	}
	s.touch(strconv.FormatBool(value), updatedBy, now)
	return nil
}

func (s *TenantSetting) touch(value, updatedBy string, now time.Time) {
	if s.value != value && s.id != 0 {
		s.version++
	}
	s.value = value
	s.updatedBy = updatedBy
	s.updatedAt = now
}

func isValidValueType(vt ValueType) bool {
	switch vt {
	case ValueTypeString, ValueTypeInt, ValueTypeBool:
		return true
	default:
		return false
	}
}
