package setting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantSetting_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewTenantSetting("", CategorySessionTimeout, KeyEnabled, ValueTypeBool, now)
	assert.Error(t, err)

	_, err = NewTenantSetting("t1", "", KeyEnabled, ValueTypeBool, now)
	assert.Error(t, err)

	_, err = NewTenantSetting("t1", CategorySessionTimeout, "", ValueTypeBool, now)
	assert.ErrorIs(t, err, ErrInvalidSettingKey)

	_, err = NewTenantSetting("t1", CategorySessionTimeout, KeyEnabled, ValueType("float"), now)
	assert.ErrorIs(t, err, ErrInvalidValueType)
}

func TestTenantSetting_TypeMismatch(t *testing.T) {
	s, err := NewTenantSetting("t1", CategorySessionTimeout, KeyEnabled, ValueTypeBool, time.Now())
	require.NoError(t, err)

	err = s.SetIntValue(5, "admin", time.Now())
	assert.ErrorIs(t, err, ErrInvalidValueType)
	assert.False(t, s.HasValue())
}

func TestTenantSetting_VersionBumpsOnPersistedChange(t *testing.T) {
	now := time.Now()
	s := ReconstructTenantSetting(7, "t1", CategorySessionTimeout, KeyTimeoutMinutes, "30", ValueTypeInt, "admin", 1, now, now)

	require.NoError(t, s.SetIntValue(30, "admin", now))
	assert.Equal(t, 1, s.Version())

	later := now.Add(time.Minute)
	require.NoError(t, s.SetIntValue(15, "ops", later))
	assert.Equal(t, 2, s.Version())
	assert.Equal(t, "ops", s.UpdatedBy())
	assert.Equal(t, later, s.UpdatedAt())

	v, err := s.GetIntValue()
	require.NoError(t, err)
	assert.Equal(t, 15, v)
}
