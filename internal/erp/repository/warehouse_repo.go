package repository

import (
	"context"
	"errors"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"gorm.io/gorm"
)

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// ---- categories ----

func (r *WarehouseRepository) CreateCategory(ctx context.Context, cat *entity.WarehouseCategory) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *WarehouseRepository) ListCategories(ctx context.Context) ([]entity.WarehouseCategory, error) {
	var cats []entity.WarehouseCategory
	err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&cats).Error
	return cats, err
}

func (r *WarehouseRepository) DeleteCategory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.WarehouseCategory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- items ----

func (r *WarehouseRepository) CreateItem(ctx context.Context, item *entity.WarehouseItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *WarehouseRepository) FindItemByID(ctx context.Context, id string) (*entity.WarehouseItem, error) {
	var item entity.WarehouseItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *WarehouseRepository) ListItems(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WarehouseItem, int64, error) {
	var items []entity.WarehouseItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WarehouseItem{})
	if categoryID := filters["category_id"]; categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if keyword := filters["keyword"]; keyword != "" {
		kw := "%" + keyword + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?)", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Category").
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// ListAllItems returns the full catalog, used by the XLSX export.
func (r *WarehouseRepository) ListAllItems(ctx context.Context) ([]entity.WarehouseItem, error) {
	var items []entity.WarehouseItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *WarehouseRepository) UpdateItem(ctx context.Context, item *entity.WarehouseItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *WarehouseRepository) DeleteItem(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.WarehouseItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LowStockItems lists positions at or below their minimum quantity.
func (r *WarehouseRepository) LowStockItems(ctx context.Context) ([]entity.WarehouseItem, error) {
	var items []entity.WarehouseItem
	err := r.db.WithContext(ctx).
		Where("min_quantity > 0 AND quantity <= min_quantity").
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// ---- movements ----

// ApplyMovement records a movement and adjusts the item quantity inside one
// transaction, re-reading the row FOR UPDATE semantics via the tx handle.
func (r *WarehouseRepository) ApplyMovement(ctx context.Context, movement *entity.StockMovement, delta float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.WarehouseItem
		if err := tx.Where("id = ?", movement.ItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&entity.WarehouseItem{}).
			Where("id = ?", movement.ItemID).
			Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
			return err
		}
		return tx.Create(movement).Error
	})
}

func (r *WarehouseRepository) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	var moves []entity.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockMovement{})
	if itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&moves).Error
	return moves, total, err
}
