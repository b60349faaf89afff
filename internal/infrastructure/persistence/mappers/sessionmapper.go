package mappers

import (
	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
)

// SessionMapper handles the conversion between Session domain entities and persistence models.
type SessionMapper interface {
	ToModel(entity *session.Session) *models.SessionModel
	ToDomain(model *models.SessionModel) *session.Session
}

// SessionMapperImpl is the concrete implementation of SessionMapper.
type SessionMapperImpl struct{}

// NewSessionMapper creates a new SessionMapper.
func NewSessionMapper() SessionMapper {
	return &SessionMapperImpl{}
}

func (m *SessionMapperImpl) ToModel(entity *session.Session) *models.SessionModel {
	if entity == nil {
		return nil
	}
	return &models.SessionModel{
		ID:             entity.ID,
		UserID:         entity.UserID,
		TenantID:       entity.TenantID,
		IPAddress:      entity.IPAddress,
		UserAgent:      entity.UserAgent,
		StartedAt:      entity.StartedAt,
		LastActivityAt: entity.LastActivityAt,
		RevokedAt:      entity.RevokedAt,
		RevokeReason:   entity.RevokeReason,
		UpdatedAt:      entity.UpdatedAt,
	}
}

func (m *SessionMapperImpl) ToDomain(model *models.SessionModel) *session.Session {
	if model == nil {
		return nil
	}
	return &session.Session{
		ID:             model.ID,
		UserID:         model.UserID,
		TenantID:       model.TenantID,
		IPAddress:      model.IPAddress,
		UserAgent:      model.UserAgent,
		StartedAt:      model.StartedAt,
		LastActivityAt: model.LastActivityAt,
		RevokedAt:      model.RevokedAt,
		RevokeReason:   model.RevokeReason,
		UpdatedAt:      model.UpdatedAt,
	}
}
