package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
)

// TimeoutEventMapper converts audit events between domain and model.
type TimeoutEventMapper interface {
	ToModel(event *session.TimeoutEvent) (*models.SessionTimeoutEventModel, error)
	ToDomain(model *models.SessionTimeoutEventModel) (*session.TimeoutEvent, error)
}

type TimeoutEventMapperImpl struct{}

func NewTimeoutEventMapper() TimeoutEventMapper {
	return &TimeoutEventMapperImpl{}
}

func (m *TimeoutEventMapperImpl) ToModel(event *session.TimeoutEvent) (*models.SessionTimeoutEventModel, error) {
	if event == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		metadata = datatypes.JSON(data)
	}

	return &models.SessionTimeoutEventModel{
		ID:         event.ID,
		SessionID:  event.SessionID,
		UserID:     event.UserID,
		TenantID:   event.TenantID,
		EventType:  string(event.Type),
		Metadata:   metadata,
		OccurredAt: event.OccurredAt,
	}, nil
}

func (m *TimeoutEventMapperImpl) ToDomain(model *models.SessionTimeoutEventModel) (*session.TimeoutEvent, error) {
	if model == nil {
		return nil, nil
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
	}

	return &session.TimeoutEvent{
		ID:         model.ID,
		SessionID:  model.SessionID,
		UserID:     model.UserID,
		TenantID:   model.TenantID,
		Type:       session.EventType(model.EventType),
		Metadata:   metadata,
		OccurredAt: model.OccurredAt,
	}, nil
}
