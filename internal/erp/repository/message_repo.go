package repository

import (
	"context"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByEntity returns the thread of one deal/project/stage, oldest first.
func (r *MessageRepository) ListByEntity(ctx context.Context, relatedType, relatedID string, page, pageSize int) ([]entity.Message, int64, error) {
	var messages []entity.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("related_type = ? AND related_id = ?", relatedType, relatedID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("User").
		Order("created_at ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&messages).Error
	return messages, total, err
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
