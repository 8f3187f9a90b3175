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

func setupLowStockAlertRepoTest(t *testing.T) *GormLowStockAlertRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:low_stock_alert_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.LowStockAlert{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewLowStockAlertRepository(db)
}

func TestLowStockAlertGetByVariantMissing(t *testing.T) {
	repo := setupLowStockAlertRepoTest(t)

	row, err := repo.GetByVariant(42)
	if err != nil {
		t.Fatalf("get missing alert errored: %v", err)
	}
	if row != nil {
		t.Fatalf("missing alert should return nil, got %+v", row)
	}
}

func TestLowStockAlertCreateUpdateAndList(t *testing.T) {
	repo := setupLowStockAlertRepoTest(t)

	row := &models.LowStockAlert{
		VariantID:   1,
		ProductID:   10,
		CurrentQty:  3,
		Threshold:   5,
		Status:      constants.AlertStatusActive,
		AlertSentAt: time.Now(),
	}
	if err := repo.Create(row); err != nil {
		t.Fatalf("create alert failed: %v", err)
	}

	got, err := repo.GetByVariant(1)
	if err != nil || got == nil {
		t.Fatalf("get alert failed: %v", err)
	}
	if got.Status != constants.AlertStatusActive {
		t.Fatalf("status want active got %s", got.Status)
	}

	now := time.Now()
	got.Status = constants.AlertStatusResolved
	got.ResolvedAt = &now
	if err := repo.Update(got); err != nil {
		t.Fatalf("update alert failed: %v", err)
	}

	items, total, err := repo.List(LowStockAlertListFilter{Page: 1, PageSize: 10, Status: constants.AlertStatusResolved})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("resolved list want 1 got total=%d len=%d", total, len(items))
	}
	if items[0].ResolvedAt == nil {
		t.Fatalf("resolved_at should be set")
	}

	items, total, err = repo.List(LowStockAlertListFilter{Page: 1, PageSize: 10, Status: constants.AlertStatusActive})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("active list want 0 got total=%d len=%d", total, len(items))
	}
}

func TestLowStockAlertUpdateRejectsUnsaved(t *testing.T) {
	repo := setupLowStockAlertRepoTest(t)

	if err := repo.Update(&models.LowStockAlert{VariantID: 9}); err == nil {
		t.Fatalf("expected error for unsaved alert row")
	}
}
