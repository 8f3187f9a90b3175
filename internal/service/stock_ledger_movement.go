package service

import (
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"
)

// recordMovement 在库存变更提交成功之后追加一条审计流水。
// 流水写入失败只记录日志并吞掉：库存变更已经生效，
// 绝不能因为审计失败把调用方的账本操作报告为失败或触发重试。
func (s *StockLedgerService) recordMovement(movementType string, variantID uint, orderNo string, quantity, previousStock, newStock int, note, actor string) {
	if s.movementRepo == nil {
		return
	}
	entry := &models.StockMovement{
		VariantID:     variantID,
		OrderNo:       orderNo,
		Type:          movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Note:          note,
		Actor:         actor,
		CreatedAt:     time.Now(),
	}
	if err := s.movementRepo.Insert(entry); err != nil {
		logger.Errorw("stock_movement_record_failed",
			"variant_id", variantID,
			"type", movementType,
			"order_no", orderNo,
			"quantity", quantity,
			"error", err,
		)
	}
}

// ListMovements 分页查询库存流水（管理端审计视图）
func (s *StockLedgerService) ListMovements(filter repository.StockMovementListFilter) ([]models.StockMovement, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.movementRepo.List(filter)
}
