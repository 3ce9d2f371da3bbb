package repository

import (
	"context"
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *DealRepository) FindByID(ctx context.Context, id string) (*entity.Deal, error) {
	var deal entity.Deal
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Deal, int64, error) {
	var deals []entity.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Deal{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if managerID := filters["manager_id"]; managerID != "" {
		query = query.Where("manager_id = ?", managerID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		kw := "%" + keyword + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(customer_name) LIKE LOWER(?)", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&deals).Error
	return deals, total, err
}

func (r *DealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

func (r *DealRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Deal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
