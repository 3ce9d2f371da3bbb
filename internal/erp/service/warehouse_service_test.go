package service

import (
	"context"
	"errors"
	"testing"

	"github.com/artelsoft/artel-erp/internal/erp/entity"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func newWarehouseService(t *testing.T) (*WarehouseService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewWarehouseService(repos.Warehouse, repos.ActivityLog), db
}

func TestMoveInboundAndOutbound(t *testing.T) {
	svc, db := newWarehouseService(t)
	ctx := context.Background()

	item := testutil.SeedWarehouseItem(t, db, "LDSP-001", "ЛДСП 16мм", 0)

	if _, err := svc.Move(ctx, "user-1", &MovementRequest{
		ItemID:       item.ID,
		MovementType: entity.MovementInbound,
		Quantity:     10,
	}); err != nil {
		t.Fatalf("inbound failed: %v", err)
	}

	if _, err := svc.Move(ctx, "user-1", &MovementRequest{
		ItemID:       item.ID,
		MovementType: entity.MovementOutbound,
		Quantity:     4,
		Reason:       "на проект",
	}); err != nil {
		t.Fatalf("outbound failed: %v", err)
	}

	got, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("expected quantity 6, got %v", got.Quantity)
	}

	moves, total, err := svc.ListMovements(ctx, item.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListMovements failed: %v", err)
	}
	if total != 2 || len(moves) != 2 {
		t.Errorf("expected 2 movements, got total=%d len=%d", total, len(moves))
	}
}

func TestMoveOutboundOverdraftRejected(t *testing.T) {
	svc, db := newWarehouseService(t)
	ctx := context.Background()

	item := testutil.SeedWarehouseItem(t, db, "MDF-001", "МДФ фасад", 3)

	_, err := svc.Move(ctx, "user-1", &MovementRequest{
		ItemID:       item.ID,
		MovementType: entity.MovementOutbound,
		Quantity:     5,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Quantity and ledger untouched after the rejection.
	got, _ := svc.GetItem(ctx, item.ID)
	if got.Quantity != 3 {
		t.Errorf("expected quantity unchanged at 3, got %v", got.Quantity)
	}
	var count int64
	db.Model(&entity.StockMovement{}).Where("item_id = ?", item.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no movement rows, got %d", count)
	}
}

func TestMoveAdjustNegative(t *testing.T) {
	svc, db := newWarehouseService(t)
	ctx := context.Background()

	item := testutil.SeedWarehouseItem(t, db, "KRP-001", "Крепеж", 10)

	if _, err := svc.Move(ctx, "user-1", &MovementRequest{
		ItemID:       item.ID,
		MovementType: entity.MovementAdjust,
		Quantity:     -2,
		Reason:       "инвентаризация",
	}); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	got, _ := svc.GetItem(ctx, item.ID)
	if got.Quantity != 8 {
		t.Errorf("expected quantity 8, got %v", got.Quantity)
	}
}

func TestMoveUnknownTypeRejected(t *testing.T) {
	svc, db := newWarehouseService(t)
	item := testutil.SeedWarehouseItem(t, db, "X-001", "Позиция", 1)

	_, err := svc.Move(context.Background(), "user-1", &MovementRequest{
		ItemID:       item.ID,
		MovementType: "teleport",
		Quantity:     1,
	})
	if err == nil {
		t.Fatal("expected error for unknown movement type")
	}
}

func TestLowStockItems(t *testing.T) {
	svc, db := newWarehouseService(t)
	ctx := context.Background()

	low := testutil.SeedWarehouseItem(t, db, "LOW-001", "Кромка", 2)
	db.Model(&entity.WarehouseItem{}).Where("id = ?", low.ID).Update("min_quantity", 5)
	ok := testutil.SeedWarehouseItem(t, db, "OK-001", "Петли", 50)
	db.Model(&entity.WarehouseItem{}).Where("id = ?", ok.ID).Update("min_quantity", 5)

	items, err := svc.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("LowStockItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 low stock item, got %d", len(items))
	}
	if items[0].SKU != "LOW-001" {
		t.Errorf("expected LOW-001, got %s", items[0].SKU)
	}
}

func TestExportItemsProducesWorkbook(t *testing.T) {
	svc, db := newWarehouseService(t)
	ctx := context.Background()

	testutil.SeedWarehouseItem(t, db, "EXP-001", "Столешница", 7)

	buf, err := svc.ExportItems(ctx)
	if err != nil {
		t.Fatalf("ExportItems failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty workbook")
	}
}
