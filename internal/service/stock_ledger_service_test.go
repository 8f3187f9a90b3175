package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStockLedgerTest(t *testing.T) (*StockLedgerService, repository.VariantStockRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:stock_ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.VariantStock{}, &models.StockMovement{}, &models.LowStockAlert{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	variantRepo := repository.NewVariantStockRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	alertRepo := repository.NewLowStockAlertRepository(db)
	alertSvc := NewLowStockAlertService(variantRepo, alertRepo)
	svc := NewStockLedgerService(variantRepo, movementRepo, alertSvc, nil, 3, 1, 0)
	return svc, variantRepo, db
}

func createLedgerTestVariant(t *testing.T, repo repository.VariantStockRepository, sku string, mutate func(*models.VariantStock)) *models.VariantStock {
	t.Helper()

	item := &models.VariantStock{
		ProductID: 1,
		SKUCode:   sku,
		Stock:     10,
	}
	if mutate != nil {
		mutate(item)
	}
	if err := repo.Create(item); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return item
}

func reloadVariant(t *testing.T, repo repository.VariantStockRepository, id uint) *models.VariantStock {
	t.Helper()
	got, err := repo.GetByID(id)
	if err != nil || got == nil {
		t.Fatalf("reload variant %d failed: %v", id, err)
	}
	return got
}

func countMovements(t *testing.T, db *gorm.DB, variantID uint, movementType string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.StockMovement{}).
		Where("variant_id = ? AND type = ?", variantID, movementType).
		Count(&count).Error; err != nil {
		t.Fatalf("count movements failed: %v", err)
	}
	return count
}

func TestReserveStockNoOversell(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-OVERSELL", nil)

	result, err := svc.ReserveStock(variant.ID, 6, "SO-1", "")
	if err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	if result.NewReserved != 6 {
		t.Fatalf("new_reserved want 6 got %d", result.NewReserved)
	}

	// 剩余可售 4，再要 6 必须拒绝
	_, err = svc.ReserveStock(variant.ID, 6, "SO-2", "")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var detail *InsufficientStockError
	if !errors.As(err, &detail) {
		t.Fatalf("expected typed insufficient error, got %T", err)
	}
	if detail.Available != 4 || detail.Requested != 6 {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	got := reloadVariant(t, variantRepo, variant.ID)
	if got.ReservedStock != 6 || got.Stock != 10 {
		t.Fatalf("unexpected state: stock=%d reserved=%d", got.Stock, got.ReservedStock)
	}
}

func TestReserveThenDeduct(t *testing.T) {
	svc, variantRepo, db := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-DEDUCT", nil)

	if _, err := svc.ReserveStock(variant.ID, 4, "SO-10", ""); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	result, err := svc.DeductStock(variant.ID, 4, "SO-10", "")
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if result.NewStock != 6 || result.NewReserved != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	got := reloadVariant(t, variantRepo, variant.ID)
	if got.Stock != 6 || got.ReservedStock != 0 {
		t.Fatalf("unexpected state: stock=%d reserved=%d", got.Stock, got.ReservedStock)
	}
	if got.Version != variant.Version+2 {
		t.Fatalf("version want %d got %d", variant.Version+2, got.Version)
	}
	if countMovements(t, db, variant.ID, constants.MovementTypeReserved) != 1 {
		t.Fatalf("expected one reserved movement")
	}
	if countMovements(t, db, variant.ID, constants.MovementTypeDeducted) != 1 {
		t.Fatalf("expected one deducted movement")
	}
}

func TestReserveThenRelease(t *testing.T) {
	svc, variantRepo, db := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-RELEASE", nil)

	if _, err := svc.ReserveStock(variant.ID, 4, "SO-20", ""); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	result, err := svc.ReleaseReservation(variant.ID, 4, "SO-20", "")
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if result.NewReserved != 0 {
		t.Fatalf("new_reserved want 0 got %d", result.NewReserved)
	}

	got := reloadVariant(t, variantRepo, variant.ID)
	if got.Stock != 10 || got.ReservedStock != 0 {
		t.Fatalf("unexpected state: stock=%d reserved=%d", got.Stock, got.ReservedStock)
	}
	if countMovements(t, db, variant.ID, constants.MovementTypeReleased) != 1 {
		t.Fatalf("expected one released movement")
	}
}

func TestReleaseClampsAtZero(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-RELEASE-CLAMP", func(v *models.VariantStock) {
		v.ReservedStock = 2
	})

	if _, err := svc.ReleaseReservation(variant.ID, 5, "SO-21", ""); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	got := reloadVariant(t, variantRepo, variant.ID)
	if got.ReservedStock != 0 {
		t.Fatalf("reserved want 0 got %d", got.ReservedStock)
	}
}

func TestReleaseMissingVariant(t *testing.T) {
	svc, _, _ := setupStockLedgerTest(t)

	_, err := svc.ReleaseReservation(9999, 1, "SO-22", "")
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
}

func TestReservePreorderPool(t *testing.T) {
	svc, variantRepo, db := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-PREORDER", func(v *models.VariantStock) {
		v.Stock = 0
		v.AllowPreorder = true
		v.PreorderStock = 5
	})

	result, err := svc.ReserveStock(variant.ID, 3, "SO-30", constants.StockPoolPreorder)
	if err != nil {
		t.Fatalf("preorder reserve failed: %v", err)
	}
	if result.NewReserved != 3 {
		t.Fatalf("new_reserved want 3 got %d", result.NewReserved)
	}

	got := reloadVariant(t, variantRepo, variant.ID)
	if got.PreorderStock != 2 || got.ReservedStock != 3 {
		t.Fatalf("unexpected state: preorder=%d reserved=%d", got.PreorderStock, got.ReservedStock)
	}
	if countMovements(t, db, variant.ID, constants.MovementTypePreorderReserved) != 1 {
		t.Fatalf("expected one preorder_reserved movement")
	}

	// 释放预售池预占时回补预售余量
	if _, err := svc.ReleaseReservation(variant.ID, 3, "SO-30", constants.StockPoolPreorder); err != nil {
		t.Fatalf("preorder release failed: %v", err)
	}
	got = reloadVariant(t, variantRepo, variant.ID)
	if got.PreorderStock != 5 || got.ReservedStock != 0 {
		t.Fatalf("unexpected state after release: preorder=%d reserved=%d", got.PreorderStock, got.ReservedStock)
	}

	// 超出预售余量必须拒绝
	_, err = svc.ReserveStock(variant.ID, 6, "SO-31", constants.StockPoolPreorder)
	if !errors.Is(err, ErrInsufficientPreorderStock) {
		t.Fatalf("expected insufficient preorder stock, got %v", err)
	}
}

func TestReservePreorderNotAllowed(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-NO-PREORDER", nil)

	_, err := svc.ReserveStock(variant.ID, 1, "SO-32", constants.StockPoolPreorder)
	if !errors.Is(err, ErrPreorderNotAllowed) {
		t.Fatalf("expected preorder not allowed, got %v", err)
	}
}

func TestReserveBackorderPool(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-BACKORDER", func(v *models.VariantStock) {
		v.Stock = 0
		v.AllowBackorder = true
		v.BackorderLimit = 5
	})

	if _, err := svc.ReserveStock(variant.ID, 4, "SO-40", constants.StockPoolBackorder); err != nil {
		t.Fatalf("backorder reserve failed: %v", err)
	}

	// 已预占 4，上限 5，再要 2 超限
	_, err := svc.ReserveStock(variant.ID, 2, "SO-41", constants.StockPoolBackorder)
	if !errors.Is(err, ErrBackorderLimitExceeded) {
		t.Fatalf("expected backorder limit exceeded, got %v", err)
	}

	var detail *BackorderLimitError
	if !errors.As(err, &detail) {
		t.Fatalf("expected typed backorder error, got %T", err)
	}
	if detail.Limit != 5 || detail.Reserved != 4 || detail.Requested != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestReserveBackorderNotAllowed(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-NO-BACKORDER", nil)

	_, err := svc.ReserveStock(variant.ID, 1, "SO-42", constants.StockPoolBackorder)
	if !errors.Is(err, ErrBackorderNotAllowed) {
		t.Fatalf("expected backorder not allowed, got %v", err)
	}
}

func TestReserveInvalidPool(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-BAD-POOL", nil)

	_, err := svc.ReserveStock(variant.ID, 1, "SO-43", "clearance")
	if !errors.Is(err, ErrInvalidStockPool) {
		t.Fatalf("expected invalid pool, got %v", err)
	}
}

func TestReserveMultipleCompensatesOnFailure(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	first := createLedgerTestVariant(t, variantRepo, "SKU-BATCH-1", nil)
	second := createLedgerTestVariant(t, variantRepo, "SKU-BATCH-2", func(v *models.VariantStock) {
		v.Stock = 1
	})
	third := createLedgerTestVariant(t, variantRepo, "SKU-BATCH-3", nil)

	entries := []StockEntry{
		{VariantID: first.ID, Quantity: 3},
		{VariantID: second.ID, Quantity: 5}, // 库存不足,触发整体回滚
		{VariantID: third.ID, Quantity: 2},
	}
	results, err := svc.ReserveMultiple(entries, "SO-50")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results want 2 got %d", len(results))
	}
	if results[0].Result == nil || results[1].Error == "" {
		t.Fatalf("unexpected results: %+v", results)
	}

	// 第一条的预占必须已被补偿释放，第三条从未执行
	got := reloadVariant(t, variantRepo, first.ID)
	if got.ReservedStock != 0 {
		t.Fatalf("first variant reserved want 0 got %d", got.ReservedStock)
	}
	got = reloadVariant(t, variantRepo, third.ID)
	if got.ReservedStock != 0 {
		t.Fatalf("third variant reserved want 0 got %d", got.ReservedStock)
	}
}

func TestDeductMultipleCompensatesOnFailure(t *testing.T) {
	svc, variantRepo, db := setupStockLedgerTest(t)
	first := createLedgerTestVariant(t, variantRepo, "SKU-DBATCH-1", nil)

	if _, err := svc.ReserveStock(first.ID, 2, "SO-60", ""); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	entries := []StockEntry{
		{VariantID: first.ID, Quantity: 2},
		{VariantID: 9999, Quantity: 1}, // 变体不存在,触发整体回滚
	}
	results, err := svc.DeductMultiple(entries, "SO-60")
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results want 2 got %d", len(results))
	}

	// 第一条的扣减必须已被回补为预占中状态
	got := reloadVariant(t, variantRepo, first.ID)
	if got.Stock != 10 || got.ReservedStock != 2 {
		t.Fatalf("unexpected state after compensation: stock=%d reserved=%d", got.Stock, got.ReservedStock)
	}
	if countMovements(t, db, first.ID, constants.MovementTypeAdjusted) != 1 {
		t.Fatalf("expected one adjusted rollback movement")
	}
}

func TestReleaseMultipleBestEffort(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	first := createLedgerTestVariant(t, variantRepo, "SKU-RBATCH-1", func(v *models.VariantStock) {
		v.ReservedStock = 3
	})
	second := createLedgerTestVariant(t, variantRepo, "SKU-RBATCH-2", func(v *models.VariantStock) {
		v.ReservedStock = 1
	})

	entries := []StockEntry{
		{VariantID: first.ID, Quantity: 3},
		{VariantID: 9999, Quantity: 1}, // 失败不阻断后续条目
		{VariantID: second.ID, Quantity: 1},
	}
	results, err := svc.ReleaseMultiple(entries, "SO-70")
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected first failure returned, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results want 3 got %d", len(results))
	}
	if results[0].Result == nil || results[1].Error == "" || results[2].Result == nil {
		t.Fatalf("unexpected results: %+v", results)
	}

	if got := reloadVariant(t, variantRepo, first.ID); got.ReservedStock != 0 {
		t.Fatalf("first reserved want 0 got %d", got.ReservedStock)
	}
	if got := reloadVariant(t, variantRepo, second.ID); got.ReservedStock != 0 {
		t.Fatalf("second reserved want 0 got %d", got.ReservedStock)
	}
}

func TestAdjustStock(t *testing.T) {
	svc, variantRepo, db := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-ADJUST", nil)

	result, err := svc.AdjustStock(variant.ID, 5, "restock", "ops")
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if result.NewStock != 15 {
		t.Fatalf("new_stock want 15 got %d", result.NewStock)
	}

	// 负向调整不允许打穿 0
	_, err = svc.AdjustStock(variant.ID, -100, "shrinkage", "ops")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if countMovements(t, db, variant.ID, constants.MovementTypeAdjusted) != 1 {
		t.Fatalf("expected one adjusted movement")
	}
}

func TestGetAvailabilitySnapshot(t *testing.T) {
	svc, variantRepo, _ := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-AVAIL", func(v *models.VariantStock) {
		v.ReservedStock = 3
		v.AllowBackorder = true
		v.BackorderLimit = 10
	})

	snapshot, err := svc.GetAvailability(context.Background(), variant.ID)
	if err != nil {
		t.Fatalf("get availability failed: %v", err)
	}
	if snapshot.Available != 7 {
		t.Fatalf("available want 7 got %d", snapshot.Available)
	}
	if snapshot.BackorderHeadroom != 7 {
		t.Fatalf("backorder headroom want 7 got %d", snapshot.BackorderHeadroom)
	}

	_, err = svc.GetAvailability(context.Background(), 9999)
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
}

// contendedVariantRepo 包装真实仓储，条件更新永远报告 0 行受影响，
// 用于确定性地触发重试耗尽路径。
type contendedVariantRepo struct {
	repository.VariantStockRepository
	attempts int
}

func (r *contendedVariantRepo) ConditionalApply(id uint, expectedVersion uint64, deltas repository.StockDeltas) (int64, error) {
	r.attempts++
	return 0, nil
}

func TestReserveStockConflictExhausted(t *testing.T) {
	_, variantRepo, db := setupStockLedgerTest(t)
	variant := createLedgerTestVariant(t, variantRepo, "SKU-CONFLICT", nil)

	contended := &contendedVariantRepo{VariantStockRepository: variantRepo}
	movementRepo := repository.NewStockMovementRepository(db)
	alertRepo := repository.NewLowStockAlertRepository(db)
	alertSvc := NewLowStockAlertService(contended, alertRepo)
	svc := NewStockLedgerService(contended, movementRepo, alertSvc, nil, 3, 1, 0)

	_, err := svc.ReserveStock(variant.ID, 1, "SO-80", "")
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	if contended.attempts != 3 {
		t.Fatalf("attempts want 3 got %d", contended.attempts)
	}
	if countMovements(t, db, variant.ID, constants.MovementTypeReserved) != 0 {
		t.Fatalf("no movement should be recorded on conflict")
	}
}

func TestInvalidEntryParams(t *testing.T) {
	svc, _, _ := setupStockLedgerTest(t)

	if _, err := svc.ReserveStock(0, 1, "", ""); !errors.Is(err, ErrInvalidStockEntry) {
		t.Fatalf("expected invalid entry for zero variant, got %v", err)
	}
	if _, err := svc.ReserveStock(1, 0, "", ""); !errors.Is(err, ErrInvalidStockEntry) {
		t.Fatalf("expected invalid entry for zero quantity, got %v", err)
	}
	if _, err := svc.AdjustStock(1, 0, "", ""); !errors.Is(err, ErrInvalidStockEntry) {
		t.Fatalf("expected invalid entry for zero delta, got %v", err)
	}
	if _, err := svc.ReserveMultiple(nil, ""); !errors.Is(err, ErrInvalidStockEntry) {
		t.Fatalf("expected invalid entry for empty batch, got %v", err)
	}
}
