package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite"
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// TimeoutConfig carries the default inactivity policy and the controller tuning knobs.
type TimeoutConfig struct {
	DefaultTimeoutMinutes int  `mapstructure:"default_timeout_minutes" validate:"gt=0"`
	DefaultWarningMinutes int  `mapstructure:"default_warning_minutes" validate:"gte=0,ltfield=DefaultTimeoutMinutes"`
	DefaultEnabled        bool `mapstructure:"default_enabled"`
	TickIntervalMs        int  `mapstructure:"tick_interval_ms" validate:"gt=0"`
	ActivityThrottleMs    int  `mapstructure:"activity_throttle_ms" validate:"gte=0"`
	LogoutTimeoutSeconds  int  `mapstructure:"logout_timeout_seconds" validate:"gt=0"`
	CacheTTLMinutes       int  `mapstructure:"cache_ttl_minutes" validate:"gt=0"`
}

func (t *TimeoutConfig) DefaultTimeout() time.Duration {
	return time.Duration(t.DefaultTimeoutMinutes) * time.Minute
}

func (t *TimeoutConfig) DefaultWarningLead() time.Duration {
	return time.Duration(t.DefaultWarningMinutes) * time.Minute
}

func (t *TimeoutConfig) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMs) * time.Millisecond
}

func (t *TimeoutConfig) ActivityThrottle() time.Duration {
	return time.Duration(t.ActivityThrottleMs) * time.Millisecond
}

func (t *TimeoutConfig) LogoutTimeout() time.Duration {
	return time.Duration(t.LogoutTimeoutSeconds) * time.Second
}

func (t *TimeoutConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLMinutes) * time.Minute
}

// RetentionConfig controls the cleanup of revoked sessions and old audit events.
type RetentionConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	IntervalMinutes    int  `mapstructure:"interval_minutes" validate:"gt=0"`
	RevokedSessionDays int  `mapstructure:"revoked_session_days" validate:"gt=0"`
	EventDays          int  `mapstructure:"event_days" validate:"gt=0"`
}

func (r *RetentionConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// RateLimitConfig bounds activity reports per client.
type RateLimitConfig struct {
	ActivityPerMinute int `mapstructure:"activity_per_minute" validate:"gte=0"`
}
