package setting

import (
	"fmt"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// TimeoutOverrideFromSettings assembles a tenant timeout override from its
// session_timeout settings. Unknown keys and empty values are ignored.
func TimeoutOverrideFromSettings(settings []*TenantSetting) (*timeout.TenantOverride, error) {
	override := &timeout.TenantOverride{}

	for _, s := range settings {
		if !s.HasValue() {
			continue
		}
		switch s.Key() {
		case KeyTimeoutMinutes:
			v, err := s.GetIntValue()
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", s.Key(), err)
			}
			override.TimeoutMinutes = &v
		case KeyWarningMinutes:
			v, err := s.GetIntValue()
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", s.Key(), err)
			}
			override.WarningMinutes = &v
		case KeyEnabled:
			v, err := s.GetBoolValue()
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", s.Key(), err)
			}
			override.Enabled = &v
		}
	}

	return override, nil
}
