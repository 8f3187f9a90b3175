package service

import (
	"fmt"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
)

// ReleaseReservation 取消预占（订单取消、支付失败、持有超时）。
// 设计取舍：释放不走乐观锁。漏释放只会多占不会超卖，是保守方向的缺陷；
// 强求版本匹配只会让一个正确性不依赖一致读的操作平白重试。
// 表达为 reserved_stock = MAX(0, reserved_stock - q) 的无条件算术更新。
func (s *StockLedgerService) ReleaseReservation(variantID uint, quantity int, orderNo, pool string) (*StockOperationResult, error) {
	if variantID == 0 || quantity <= 0 {
		return nil, ErrInvalidStockEntry
	}
	normalized, err := normalizePool(pool)
	if err != nil {
		return nil, err
	}

	affected, err := s.variantRepo.ApplyRelease(variantID, quantity, normalized == constants.StockPoolPreorder)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrVariantNotFound
	}

	result := &StockOperationResult{
		VariantID: variantID,
		Pool:      normalized,
		Quantity:  quantity,
	}
	// 回读仅用于结果快照与流水，释放本身已经生效
	variant, err := s.variantRepo.GetByID(variantID)
	if err == nil && variant != nil {
		result.PreviousStock = variant.Stock
		result.NewStock = variant.Stock
		result.NewReserved = variant.ReservedStock
		result.PreviousReserved = variant.ReservedStock + quantity
		result.Version = variant.Version
		s.recordMovement(constants.MovementTypeReleased, variantID, orderNo, -quantity, variant.Stock, variant.Stock, "", "")
	} else {
		s.recordMovement(constants.MovementTypeReleased, variantID, orderNo, -quantity, 0, 0, "", "")
	}
	s.afterAvailabilityChange(variantID)
	return result, nil
}

// ReleaseMultiple 批量释放，尽力而为：单条失败不回滚其余条目
// （释放本身就是补偿操作，没有可补偿的对象）；所有条目都会被尝试，
// 失败逐条收集，整体成功的定义是没有任何条目失败。
func (s *StockLedgerService) ReleaseMultiple(entries []StockEntry, orderNo string) ([]BatchItemResult, error) {
	if len(entries) == 0 {
		return nil, ErrInvalidStockEntry
	}
	results := make([]BatchItemResult, 0, len(entries))
	var firstErr error
	for i, entry := range entries {
		res, err := s.ReleaseReservation(entry.VariantID, entry.Quantity, orderNo, entry.Pool)
		if err != nil {
			results = append(results, BatchItemResult{Entry: entry, Error: err.Error()})
			if firstErr == nil {
				firstErr = fmt.Errorf("release batch item %d: %w", i, err)
			}
			continue
		}
		results = append(results, BatchItemResult{Entry: entry, Result: res})
	}
	return results, firstErr
}
