package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStockMovementRepoTest(t *testing.T) *GormStockMovementRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:stock_movement_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.StockMovement{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewStockMovementRepository(db)
}

func TestStockMovementInsertAndList(t *testing.T) {
	repo := setupStockMovementRepoTest(t)

	entries := []models.StockMovement{
		{VariantID: 1, OrderNo: "SO-1001", Type: constants.MovementTypeReserved, Quantity: 2, PreviousStock: 10, NewStock: 10},
		{VariantID: 1, OrderNo: "SO-1001", Type: constants.MovementTypeDeducted, Quantity: -2, PreviousStock: 10, NewStock: 8},
		{VariantID: 2, OrderNo: "SO-1002", Type: constants.MovementTypeReserved, Quantity: 1, PreviousStock: 5, NewStock: 5},
	}
	for i := range entries {
		if err := repo.Insert(&entries[i]); err != nil {
			t.Fatalf("insert movement failed: %v", err)
		}
	}

	items, total, err := repo.List(StockMovementListFilter{Page: 1, PageSize: 10, VariantID: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("variant filter want 2 got total=%d len=%d", total, len(items))
	}
	// 按 ID 倒序：最新一条在前
	if items[0].Type != constants.MovementTypeDeducted {
		t.Fatalf("expected latest movement first, got %s", items[0].Type)
	}

	items, total, err = repo.List(StockMovementListFilter{Page: 1, PageSize: 10, OrderNo: "SO-1002"})
	if err != nil {
		t.Fatalf("list by order_no failed: %v", err)
	}
	if total != 1 || items[0].VariantID != 2 {
		t.Fatalf("order_no filter unexpected result: total=%d items=%+v", total, items)
	}
}

func TestStockMovementListPagination(t *testing.T) {
	repo := setupStockMovementRepoTest(t)

	for i := 0; i < 5; i++ {
		entry := models.StockMovement{VariantID: 7, Type: constants.MovementTypeAdjusted, Quantity: 1}
		if err := repo.Insert(&entry); err != nil {
			t.Fatalf("insert movement failed: %v", err)
		}
	}

	items, total, err := repo.List(StockMovementListFilter{Page: 2, PageSize: 2, VariantID: 7})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("page size want 2 got %d", len(items))
	}
}

func TestStockMovementInsertRejectsInvalid(t *testing.T) {
	repo := setupStockMovementRepoTest(t)

	if err := repo.Insert(nil); err == nil {
		t.Fatalf("expected error for nil entry")
	}
	if err := repo.Insert(&models.StockMovement{Type: constants.MovementTypeReserved}); err == nil {
		t.Fatalf("expected error for zero variant id")
	}
}
