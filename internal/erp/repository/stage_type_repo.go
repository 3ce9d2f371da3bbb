package repository

import (
	"context"
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type StageTypeRepository struct {
	db *gorm.DB
}

func NewStageTypeRepository(db *gorm.DB) *StageTypeRepository {
	return &StageTypeRepository{db: db}
}

func (r *StageTypeRepository) Create(ctx context.Context, st *entity.StageType) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *StageTypeRepository) FindByID(ctx context.Context, id string) (*entity.StageType, error) {
	var st entity.StageType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *StageTypeRepository) FindByCode(ctx context.Context, code string) (*entity.StageType, error) {
	var st entity.StageType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// List returns stage types, active ones only unless all is set.
func (r *StageTypeRepository) List(ctx context.Context, all bool) ([]entity.StageType, error) {
	var types []entity.StageType
	query := r.db.WithContext(ctx).Model(&entity.StageType{})
	if !all {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("code ASC").Find(&types).Error
	return types, err
}

func (r *StageTypeRepository) Update(ctx context.Context, st *entity.StageType) error {
	return r.db.WithContext(ctx).Save(st).Error
}

// SetActive flips the activity flag. Writing the current value again is a
// harmless no-op, which keeps activation idempotent.
func (r *StageTypeRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&entity.StageType{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
