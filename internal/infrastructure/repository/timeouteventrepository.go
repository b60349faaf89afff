package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/mappers"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

const defaultEventListLimit = 100

// TimeoutEventRepository stores the session timeout audit trail.
type TimeoutEventRepository struct {
	db     *gorm.DB
	mapper mappers.TimeoutEventMapper
	logger logger.Interface
}

func NewTimeoutEventRepository(db *gorm.DB, logger logger.Interface) *TimeoutEventRepository {
	return &TimeoutEventRepository{
		db:     db,
		mapper: mappers.NewTimeoutEventMapper(),
		logger: logger,
	}
}

func (r *TimeoutEventRepository) Record(ctx context.Context, event *session.TimeoutEvent) error {
	model, err := r.mapper.ToModel(event)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record timeout event: %w", err)
	}
	return nil
}

// ListBySession returns the newest events of a session first.
func (r *TimeoutEventRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*session.TimeoutEvent, error) {
	if limit <= 0 {
		limit = defaultEventListLimit
	}

	var modelList []*models.SessionTimeoutEventModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list timeout events: %w", err)
	}

	events := make([]*session.TimeoutEvent, 0, len(modelList))
	for _, model := range modelList {
		event, err := r.mapper.ToDomain(model)
		if err != nil {
			r.logger.Warnw("skipping unreadable timeout event", "id", model.ID, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *TimeoutEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&models.SessionTimeoutEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete timeout events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
