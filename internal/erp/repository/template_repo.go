package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *entity.ProcessTemplate) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*entity.ProcessTemplate, error) {
	var tmpl entity.ProcessTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

// GetWithStages loads a template with its stages in pipeline order.
func (r *TemplateRepository) GetWithStages(ctx context.Context, id string) (*entity.ProcessTemplate, error) {
	var tmpl entity.ProcessTemplate
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Stages.StageType").
		Where("id = ?", id).
		First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) List(ctx context.Context, activeOnly bool) ([]entity.ProcessTemplate, error) {
	var templates []entity.ProcessTemplate
	query := r.db.WithContext(ctx).Model(&entity.ProcessTemplate{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) Update(ctx context.Context, tmpl *entity.ProcessTemplate) error {
	return r.db.WithContext(ctx).Save(tmpl).Error
}

// Delete removes the template; stages go with it via FK cascade.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ProcessTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) CreateStage(ctx context.Context, stage *entity.TemplateStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *TemplateRepository) FindStageByID(ctx context.Context, id string) (*entity.TemplateStage, error) {
	var stage entity.TemplateStage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (r *TemplateRepository) ListStages(ctx context.Context, templateID string) ([]entity.TemplateStage, error) {
	var stages []entity.TemplateStage
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("sort_order ASC").
		Find(&stages).Error
	return stages, err
}

func (r *TemplateRepository) UpdateStage(ctx context.Context, stage *entity.TemplateStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

func (r *TemplateRepository) DeleteStage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.TemplateStage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceStages swaps the whole stage list of a template in one transaction.
func (r *TemplateRepository) ReplaceStages(ctx context.Context, templateID string, stages []entity.TemplateStage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&entity.TemplateStage{}).Error; err != nil {
			return fmt.Errorf("delete old stages: %w", err)
		}
		if len(stages) == 0 {
			return nil
		}
		now := time.Now()
		for i := range stages {
			stages[i].TemplateID = templateID
			stages[i].CreatedAt = now
			stages[i].UpdatedAt = now
		}
		if err := tx.Create(&stages).Error; err != nil {
			return fmt.Errorf("create stages: %w", err)
		}
		return nil
	})
}

// DB exposes the handle for cross-repository transactions.
func (r *TemplateRepository) DB() *gorm.DB {
	return r.db
}
