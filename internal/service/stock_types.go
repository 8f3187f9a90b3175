package service

import (
	"strings"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
)

// StockEntry 单条库存操作请求（批量操作的一项）
type StockEntry struct {
	VariantID uint
	Quantity  int
	Pool      string
}

// StockOperationResult 单变体库存操作结果快照
type StockOperationResult struct {
	VariantID        uint   `json:"variant_id"`
	Pool             string `json:"pool"`
	Quantity         int    `json:"quantity"`
	PreviousStock    int    `json:"previous_stock"`
	NewStock         int    `json:"new_stock"`
	PreviousReserved int    `json:"previous_reserved"`
	NewReserved      int    `json:"new_reserved"`
	Version          uint64 `json:"version"`
}

// BatchItemResult 批量操作的逐项结果
type BatchItemResult struct {
	Entry  StockEntry            `json:"entry"`
	Result *StockOperationResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// normalizePool 规范化库存池名称，空值回落到常规池
func normalizePool(pool string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(pool)) {
	case "", constants.StockPoolRegular:
		return constants.StockPoolRegular, nil
	case constants.StockPoolPreorder:
		return constants.StockPoolPreorder, nil
	case constants.StockPoolBackorder:
		return constants.StockPoolBackorder, nil
	default:
		return "", ErrInvalidStockPool
	}
}
