package models

import (
	"time"
)

// StockMovement 库存流水表（追加写入，创建后不再修改）
type StockMovement struct {
	ID            uint      `gorm:"primarykey" json:"id"`                               // 主键
	VariantID     uint      `gorm:"not null;index" json:"variant_id"`                   // 变体ID
	OrderNo       string    `gorm:"type:varchar(64);index" json:"order_no,omitempty"`   // 关联订单号（可为空）
	Type          string    `gorm:"type:varchar(32);not null;index" json:"type"`        // 流水类型
	Quantity      int       `gorm:"not null" json:"quantity"`                           // 带符号变动数量
	PreviousStock int       `gorm:"not null" json:"previous_stock"`                     // 变动前在库数量
	NewStock      int       `gorm:"not null" json:"new_stock"`                          // 变动后在库数量
	Note          string    `gorm:"type:text" json:"note,omitempty"`                    // 备注
	Actor         string    `gorm:"type:varchar(64)" json:"actor,omitempty"`            // 操作者标识（可为空）
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                            // 创建时间
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
