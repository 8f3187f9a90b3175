package models

import (
	"time"
)

// LowStockAlert 低库存预警表（每个变体至多一行，状态机转移见 service 层）
type LowStockAlert struct {
	ID             uint       `gorm:"primarykey" json:"id"`                           // 主键
	VariantID      uint       `gorm:"not null;uniqueIndex" json:"variant_id"`         // 变体ID
	ProductID      uint       `gorm:"not null;index" json:"product_id"`               // 商品ID
	CurrentQty     int        `gorm:"not null" json:"current_qty"`                    // 最近一次观测到的可售数量
	Threshold      int        `gorm:"not null" json:"threshold"`                      // 触发时的阈值快照
	Status         string     `gorm:"type:varchar(16);not null;index" json:"status"`  // active / acknowledged / resolved
	AlertSentAt    time.Time  `json:"alert_sent_at"`                                  // 触发时间
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`                      // 确认时间
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`                          // 解除时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt      time.Time  `gorm:"index" json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (LowStockAlert) TableName() string {
	return "low_stock_alerts"
}
