package repository

import "time"

// StockMovementListFilter 查询库存流水列表的过滤条件
type StockMovementListFilter struct {
	Page        int
	PageSize    int
	VariantID   uint
	OrderNo     string
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LowStockAlertListFilter 查询低库存预警列表的过滤条件
type LowStockAlertListFilter struct {
	Page      int
	PageSize  int
	Status    string
	ProductID uint
}
