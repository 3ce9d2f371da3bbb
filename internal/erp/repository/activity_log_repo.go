package repository

import (
	"context"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ActivityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	var items []entity.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// LogActivity records an audit row and swallows the error: audit must never
// fail the mutation it describes.
func (r *ActivityLogRepository) LogActivity(ctx context.Context, entityType, entityID, action, fromStatus, toStatus, content, operatorID, operatorName string) {
	log := &entity.ActivityLog{
		ID:           uuid.New().String(),
		EntityType:   entityType,
		EntityID:     entityID,
		Action:       action,
		FromStatus:   fromStatus,
		ToStatus:     toStatus,
		Content:      content,
		OperatorID:   operatorID,
		OperatorName: operatorName,
	}
	r.db.WithContext(ctx).Create(log)
}
