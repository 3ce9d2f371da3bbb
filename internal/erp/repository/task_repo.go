package repository

import (
	"context"
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Attachments").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Task, int64, error) {
	var tasks []entity.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Task{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if assigneeID := filters["assignee_id"]; assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Assignee").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes the task; attachments cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) CreateAttachment(ctx context.Context, att *entity.TaskAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *TaskRepository) ListAttachments(ctx context.Context, taskID string) ([]entity.TaskAttachment, error) {
	var atts []entity.TaskAttachment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&atts).Error
	return atts, err
}

func (r *TaskRepository) DeleteAttachment(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.TaskAttachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
