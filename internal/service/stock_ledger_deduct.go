package service

import (
	"fmt"
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"
)

// DeductStock 支付确认后将预占转为永久扣减。
// 预占在下单阶段已经做过准入，这里不再按数量做准入检查；
// 常规池同时扣减在库与预占（各自保底到 0），预售/缺货池只扣减预占，
// 缺货池的实际在库由商家后续补货完成，不在账本可见范围内。
func (s *StockLedgerService) DeductStock(variantID uint, quantity int, orderNo, pool string) (*StockOperationResult, error) {
	if variantID == 0 || quantity <= 0 {
		return nil, ErrInvalidStockEntry
	}
	normalized, err := normalizePool(pool)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoffFor(attempt))
		}
		variant, err := s.variantRepo.GetByID(variantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, ErrVariantNotFound
		}
		deltas, movementType := buildDeductChange(variant, quantity, normalized)
		affected, err := s.variantRepo.ConditionalApply(variantID, variant.Version, deltas)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			continue
		}
		result := buildOperationResult(variant, normalized, quantity, deltas)
		s.recordMovement(movementType, variantID, orderNo, -quantity, result.PreviousStock, result.NewStock, "", "")
		s.afterAvailabilityChange(variantID)
		return result, nil
	}
	return nil, ErrConcurrencyConflict
}

// DeductMultiple 按序扣减多条目；首个失败即对已成功条目回补库存。
// 回补走 adjusted 流水而非 released：这是内部回滚，不是面向客户的释放。
func (s *StockLedgerService) DeductMultiple(entries []StockEntry, orderNo string) ([]BatchItemResult, error) {
	if len(entries) == 0 {
		return nil, ErrInvalidStockEntry
	}
	results := make([]BatchItemResult, 0, len(entries))
	for i, entry := range entries {
		res, err := s.DeductStock(entry.VariantID, entry.Quantity, orderNo, entry.Pool)
		if err != nil {
			results = append(results, BatchItemResult{Entry: entry, Error: err.Error()})
			s.compensateDeductions(results[:i], orderNo)
			return results, fmt.Errorf("deduct batch item %d: %w", i, err)
		}
		results = append(results, BatchItemResult{Entry: entry, Result: res})
	}
	return results, nil
}

// compensateDeductions 逆序回补已成功的扣减
func (s *StockLedgerService) compensateDeductions(succeeded []BatchItemResult, orderNo string) {
	for i := len(succeeded) - 1; i >= 0; i-- {
		item := succeeded[i]
		if item.Result == nil {
			continue
		}
		if err := s.recreditDeduction(item.Entry, orderNo); err != nil {
			logger.Errorw("stock_deduct_compensation_failed",
				"variant_id", item.Entry.VariantID,
				"quantity", item.Entry.Quantity,
				"order_no", orderNo,
				"error", err,
			)
		}
	}
}

// recreditDeduction 将一笔已扣减的数量回补为预占中状态（扣减的逆操作）
func (s *StockLedgerService) recreditDeduction(entry StockEntry, orderNo string) error {
	normalized, err := normalizePool(entry.Pool)
	if err != nil {
		return err
	}
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoffFor(attempt))
		}
		variant, err := s.variantRepo.GetByID(entry.VariantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return ErrVariantNotFound
		}
		deltas := repository.StockDeltas{ReservedStock: entry.Quantity}
		if normalized == constants.StockPoolRegular {
			deltas.Stock = entry.Quantity
		}
		affected, err := s.variantRepo.ConditionalApply(entry.VariantID, variant.Version, deltas)
		if err != nil {
			return err
		}
		if affected == 0 {
			continue
		}
		s.recordMovement(constants.MovementTypeAdjusted, entry.VariantID, orderNo, entry.Quantity,
			variant.Stock, variant.Stock+deltas.Stock, "deduct rollback", "")
		s.afterAvailabilityChange(entry.VariantID)
		return nil
	}
	return ErrConcurrencyConflict
}

// buildDeductChange 生成扣减的字段增量（无准入检查，保底到 0）
func buildDeductChange(variant *models.VariantStock, quantity int, pool string) (repository.StockDeltas, string) {
	reservedDelta := -quantity
	if variant.ReservedStock < quantity {
		reservedDelta = -variant.ReservedStock
	}
	if pool == constants.StockPoolRegular {
		stockDelta := -quantity
		if variant.Stock < quantity {
			stockDelta = -variant.Stock
		}
		return repository.StockDeltas{Stock: stockDelta, ReservedStock: reservedDelta}, constants.MovementTypeDeducted
	}
	movementType := constants.MovementTypeDeducted
	if pool == constants.StockPoolPreorder {
		movementType = constants.MovementTypePreorderDeducted
	}
	return repository.StockDeltas{ReservedStock: reservedDelta}, movementType
}
