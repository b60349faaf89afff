package dto

import (
	"time"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// TimeoutOverrideDTO is a tenant's stored customisation. Absent fields inherit the default.
type TimeoutOverrideDTO struct {
	TimeoutMinutes *int  `json:"timeout_minutes,omitempty"`
	WarningMinutes *int  `json:"warning_minutes,omitempty"`
	Enabled        *bool `json:"enabled,omitempty"`
}

// EffectivePolicyDTO is the policy sessions of the tenant run under.
type EffectivePolicyDTO struct {
	TimeoutMinutes int   `json:"timeout_minutes"`
	WarningMinutes int   `json:"warning_minutes"`
	Enabled        bool  `json:"enabled"`
	TimeoutMs      int64 `json:"timeout_ms"`
	WarningLeadMs  int64 `json:"warning_lead_ms"`
}

// TenantTimeoutPolicyResponse represents a tenant's timeout policy
type TenantTimeoutPolicyResponse struct {
	TenantID  string              `json:"tenant_id"`
	Override  *TimeoutOverrideDTO `json:"override,omitempty"`
	Effective EffectivePolicyDTO  `json:"effective"`
	UpdatedBy string              `json:"updated_by,omitempty"`
	UpdatedAt *time.Time          `json:"updated_at,omitempty"`
}

// UpdateTenantTimeoutPolicyRequest represents the request to change a tenant's override.
// Only the fields present are changed.
type UpdateTenantTimeoutPolicyRequest struct {
	TimeoutMinutes *int  `json:"timeout_minutes" binding:"omitempty,min=1,max=1440"`
	WarningMinutes *int  `json:"warning_minutes" binding:"omitempty,min=0,max=1440"`
	Enabled        *bool `json:"enabled"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateTenantTimeoutPolicyRequest) IsEmpty() bool {
	return r.TimeoutMinutes == nil && r.WarningMinutes == nil && r.Enabled == nil
}

func ToOverrideDTO(o *timeout.TenantOverride) *TimeoutOverrideDTO {
	if o == nil || o.IsEmpty() {
		return nil
	}
	return &TimeoutOverrideDTO{
		TimeoutMinutes: o.TimeoutMinutes,
		WarningMinutes: o.WarningMinutes,
		Enabled:        o.Enabled,
	}
}

func ToEffectivePolicyDTO(p timeout.Policy) EffectivePolicyDTO {
	return EffectivePolicyDTO{
		TimeoutMinutes: int(p.Timeout() / time.Minute),
		WarningMinutes: int(p.WarningLead() / time.Minute),
		Enabled:        p.Enabled(),
		TimeoutMs:      p.TimeoutMs(),
		WarningLeadMs:  p.WarningLeadMs(),
	}
}
