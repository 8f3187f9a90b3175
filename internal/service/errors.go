package service

import (
	"errors"
	"fmt"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
)

// 库存服务哨兵错误
var (
	ErrVariantNotFound           = errors.New("变体库存不存在")
	ErrInsufficientStock         = errors.New("库存不足")
	ErrInsufficientPreorderStock = errors.New("预售库存不足")
	ErrPreorderNotAllowed        = errors.New("该变体未开启预售")
	ErrBackorderNotAllowed       = errors.New("该变体未开启缺货下单")
	ErrBackorderLimitExceeded    = errors.New("超出缺货下单上限")
	ErrConcurrencyConflict       = errors.New("库存版本冲突，请重试")
	ErrInvalidStockEntry         = errors.New("无效的库存操作参数")
	ErrInvalidStockPool          = errors.New("无效的库存池")
	ErrAlertNotFound             = errors.New("低库存预警不存在")
)

// InsufficientStockError 准入失败详情（请求量与可用量），Unwrap 到对应哨兵错误
type InsufficientStockError struct {
	Pool      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: pool=%s requested=%d available=%d",
		e.sentinel().Error(), e.Pool, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return e.sentinel()
}

func (e *InsufficientStockError) sentinel() error {
	if e.Pool == constants.StockPoolPreorder {
		return ErrInsufficientPreorderStock
	}
	return ErrInsufficientStock
}

// BackorderLimitError 缺货下单超限详情，Unwrap 到 ErrBackorderLimitExceeded
type BackorderLimitError struct {
	Limit     int
	Reserved  int
	Requested int
}

func (e *BackorderLimitError) Error() string {
	return fmt.Sprintf("%s: limit=%d reserved=%d requested=%d",
		ErrBackorderLimitExceeded.Error(), e.Limit, e.Reserved, e.Requested)
}

func (e *BackorderLimitError) Unwrap() error {
	return ErrBackorderLimitExceeded
}
