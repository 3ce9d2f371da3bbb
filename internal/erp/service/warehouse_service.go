package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ErrInsufficientStock rejects outbound movements that would take an item
// below zero.
var ErrInsufficientStock = fmt.Errorf("insufficient stock")

// WarehouseService manages the stock catalog and the movement ledger.
type WarehouseService struct {
	repo         *repository.WarehouseRepository
	activityRepo *repository.ActivityLogRepository
}

func NewWarehouseService(repo *repository.WarehouseRepository, activityRepo *repository.ActivityLogRepository) *WarehouseService {
	return &WarehouseService{repo: repo, activityRepo: activityRepo}
}

// ---- categories ----

func (s *WarehouseService) CreateCategory(ctx context.Context, name string, sortOrder int) (*entity.WarehouseCategory, error) {
	now := time.Now()
	cat := &entity.WarehouseCategory{
		ID:        uuid.New().String(),
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *WarehouseService) ListCategories(ctx context.Context) ([]entity.WarehouseCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *WarehouseService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// ---- items ----

type CreateItemRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	CategoryID  *string `json:"category_id"`
	Unit        string  `json:"unit"`
	MinQuantity float64 `json:"min_quantity"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Notes       string  `json:"notes"`
}

func (s *WarehouseService) CreateItem(ctx context.Context, userID string, req *CreateItemRequest) (*entity.WarehouseItem, error) {
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	now := time.Now()
	item := &entity.WarehouseItem{
		ID:          uuid.New().String(),
		SKU:         req.SKU,
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Quantity:    0,
		Unit:        unit,
		MinQuantity: req.MinQuantity,
		Price:       req.Price,
		Location:    req.Location,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "warehouse_item", item.ID, entity.ActionCreate, "", "", item.SKU, userID, "")
	return item, nil
}

func (s *WarehouseService) GetItem(ctx context.Context, id string) (*entity.WarehouseItem, error) {
	return s.repo.FindItemByID(ctx, id)
}

func (s *WarehouseService) ListItems(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WarehouseItem, int64, error) {
	return s.repo.ListItems(ctx, page, pageSize, filters)
}

// UpdateItemRequest: nil fields are left unchanged. Quantity is absent on
// purpose; it only moves through movements.
type UpdateItemRequest struct {
	SKU         *string  `json:"sku"`
	Name        *string  `json:"name"`
	CategoryID  *string  `json:"category_id"`
	Unit        *string  `json:"unit"`
	MinQuantity *float64 `json:"min_quantity"`
	Price       *float64 `json:"price"`
	Location    *string  `json:"location"`
	Notes       *string  `json:"notes"`
}

func (s *WarehouseService) UpdateItem(ctx context.Context, id, userID string, req *UpdateItemRequest) (*entity.WarehouseItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SKU != nil {
		item.SKU = *req.SKU
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.CategoryID != nil {
		item.CategoryID = req.CategoryID
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.UpdatedAt = time.Now()
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, "warehouse_item", id, entity.ActionUpdate, "", "", "", userID, "")
	return item, nil
}

func (s *WarehouseService) DeleteItem(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.activityRepo.LogActivity(ctx, "warehouse_item", id, entity.ActionDelete, "", "", "", userID, "")
	return nil
}

func (s *WarehouseService) LowStockItems(ctx context.Context) ([]entity.WarehouseItem, error) {
	return s.repo.LowStockItems(ctx)
}

// ---- movements ----

type MovementRequest struct {
	ItemID       string  `json:"item_id" binding:"required"`
	MovementType string  `json:"movement_type" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Reason       string  `json:"reason"`
	ReferenceID  string  `json:"reference_id"`
}

// Move records a stock movement. Inbound adds, outbound subtracts, adjust
// applies the signed quantity as-is. Outbound beyond the current quantity
// is rejected.
func (s *WarehouseService) Move(ctx context.Context, userID string, req *MovementRequest) (*entity.StockMovement, error) {
	var delta float64
	switch req.MovementType {
	case entity.MovementInbound:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("inbound quantity must be positive")
		}
		delta = req.Quantity
	case entity.MovementOutbound:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("outbound quantity must be positive")
		}
		delta = -req.Quantity
	case entity.MovementAdjust:
		delta = req.Quantity
	default:
		return nil, fmt.Errorf("unknown movement type: %s", req.MovementType)
	}

	item, err := s.repo.FindItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: have %.3f, requested %.3f", ErrInsufficientStock, item.Quantity, -delta)
	}

	movement := &entity.StockMovement{
		ID:           uuid.New().String(),
		ItemID:       req.ItemID,
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		ReferenceID:  req.ReferenceID,
		CreatedBy:    userID,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.ApplyMovement(ctx, movement, delta); err != nil {
		return nil, fmt.Errorf("apply movement: %w", err)
	}
	s.activityRepo.LogActivity(ctx, "warehouse_item", req.ItemID, entity.ActionUpdate, "", "",
		fmt.Sprintf("%s %.3f", req.MovementType, req.Quantity), userID, "")
	return movement, nil
}

func (s *WarehouseService) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	return s.repo.ListMovements(ctx, itemID, page, pageSize)
}

// ExportItems renders the full catalog into an XLSX workbook.
func (s *WarehouseService) ExportItems(ctx context.Context) (*bytes.Buffer, error) {
	items, err := s.repo.ListAllItems(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Items"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"SKU", "Name", "Category", "Quantity", "Unit", "Min Quantity", "Price", "Location"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, item := range items {
		category := ""
		if item.Category != nil {
			category = item.Category.Name
		}
		values := []interface{}{item.SKU, item.Name, category, item.Quantity, item.Unit, item.MinQuantity, item.Price, item.Location}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
