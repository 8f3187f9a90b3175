package constants

// 库存池常量
const (
	StockPoolRegular   = "regular"
	StockPoolPreorder  = "preorder"
	StockPoolBackorder = "backorder"
)

// 库存流水类型常量
const (
	MovementTypeReserved         = "reserved"
	MovementTypePreorderReserved = "preorder_reserved"
	MovementTypeDeducted         = "deducted"
	MovementTypePreorderDeducted = "preorder_deducted"
	MovementTypeReleased         = "released"
	MovementTypeAdjusted         = "adjusted"
)

// 低库存预警状态常量
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// 库存操作重试常量
const (
	// StockMaxRetries 乐观锁冲突最大尝试次数
	StockMaxRetries = 3
	// StockRetryBackoffMS 首次重试退避毫秒数（逐次翻倍）
	StockRetryBackoffMS = 50
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskLowStockCheck = "stock:low_stock_check"
	TaskLowStockScan  = "stock:low_stock_scan"
)
