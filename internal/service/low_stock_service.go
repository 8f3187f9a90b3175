package service

import (
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"
)

// LowStockAlertService 低库存预警服务。
// 每个变体至多持有一行预警，状态在 {active, acknowledged, resolved}
// 之间就地转移，永不重建新行；转移表：
//
//	available <= threshold：无行 -> 新建 active；resolved -> 重开 active；
//	  active/acknowledged -> 仅刷新 current_qty（已确认的管理员不再被打扰）
//	available >  threshold：非 resolved -> resolved
type LowStockAlertService struct {
	variantRepo repository.VariantStockRepository
	alertRepo   repository.LowStockAlertRepository
}

// NewLowStockAlertService 创建低库存预警服务
func NewLowStockAlertService(variantRepo repository.VariantStockRepository, alertRepo repository.LowStockAlertRepository) *LowStockAlertService {
	return &LowStockAlertService{
		variantRepo: variantRepo,
		alertRepo:   alertRepo,
	}
}

// CheckAndAlert 依据当前可售数量与阈值推进预警状态机
func (s *LowStockAlertService) CheckAndAlert(variantID uint) error {
	if variantID == 0 {
		return ErrInvalidStockEntry
	}
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return err
	}
	if variant == nil {
		return ErrVariantNotFound
	}
	if variant.LowStockThreshold <= 0 {
		// 未配置阈值：无论库存多少都不触碰预警行
		return nil
	}

	available := variant.Available()
	alert, err := s.alertRepo.GetByVariant(variantID)
	if err != nil {
		return err
	}
	now := time.Now()

	if available <= variant.LowStockThreshold {
		if alert == nil {
			return s.alertRepo.Create(&models.LowStockAlert{
				VariantID:   variantID,
				ProductID:   variant.ProductID,
				CurrentQty:  available,
				Threshold:   variant.LowStockThreshold,
				Status:      constants.AlertStatusActive,
				AlertSentAt: now,
			})
		}
		if alert.Status == constants.AlertStatusResolved {
			// 重开：恢复 active 并清空确认/解除时间戳
			alert.Status = constants.AlertStatusActive
			alert.AcknowledgedAt = nil
			alert.ResolvedAt = nil
			alert.CurrentQty = available
			alert.Threshold = variant.LowStockThreshold
			alert.AlertSentAt = now
			return s.alertRepo.Update(alert)
		}
		// active / acknowledged：仅刷新观测数量，状态保持不变
		alert.CurrentQty = available
		return s.alertRepo.Update(alert)
	}

	if alert != nil && alert.Status != constants.AlertStatusResolved {
		alert.Status = constants.AlertStatusResolved
		alert.ResolvedAt = &now
		alert.CurrentQty = available
		return s.alertRepo.Update(alert)
	}
	return nil
}

// Acknowledge 管理员确认预警（仅 active 可确认，其余状态不做处理）
func (s *LowStockAlertService) Acknowledge(variantID uint) (*models.LowStockAlert, error) {
	if variantID == 0 {
		return nil, ErrInvalidStockEntry
	}
	alert, err := s.alertRepo.GetByVariant(variantID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}
	if alert.Status != constants.AlertStatusActive {
		return alert, nil
	}
	now := time.Now()
	alert.Status = constants.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	if err := s.alertRepo.Update(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Scan 全量巡检：对所有开启阈值的变体推进一次预警状态机
func (s *LowStockAlertService) Scan() (int, error) {
	variants, err := s.variantRepo.ListWithThreshold()
	if err != nil {
		return 0, err
	}
	checked := 0
	for i := range variants {
		if err := s.CheckAndAlert(variants[i].ID); err != nil {
			logger.Warnw("low_stock_scan_check_failed", "variant_id", variants[i].ID, "error", err)
			continue
		}
		checked++
	}
	return checked, nil
}

// ListAlerts 分页查询预警列表
func (s *LowStockAlertService) ListAlerts(filter repository.LowStockAlertListFilter) ([]models.LowStockAlert, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.alertRepo.List(filter)
}
