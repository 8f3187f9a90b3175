package models

import (
	"time"
)

// VariantStock 变体库存表（每个可售变体一行，version 为乐观锁令牌）
type VariantStock struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                             // 主键（变体标识）
	ProductID         uint      `gorm:"not null;index" json:"product_id"`                                 // 商品ID
	SKUCode           string    `gorm:"column:sku_code;type:varchar(64);uniqueIndex" json:"sku_code"`     // SKU编码
	PriceAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`        // 变体售价
	Stock             int       `gorm:"not null;default:0" json:"stock"`                                  // 在库数量
	ReservedStock     int       `gorm:"not null;default:0" json:"reserved_stock"`                         // 各池合计预占数量（待支付）
	PreorderStock     int       `gorm:"not null;default:0" json:"preorder_stock"`                         // 预售可用数量（预占时扣减）
	AllowPreorder     bool      `gorm:"not null;default:false" json:"allow_preorder"`                     // 是否允许预售
	AllowBackorder    bool      `gorm:"not null;default:false" json:"allow_backorder"`                    // 是否允许缺货下单
	BackorderLimit    int       `gorm:"not null;default:0" json:"backorder_limit"`                        // 缺货下单上限（0 表示不限制）
	LowStockThreshold int       `gorm:"not null;default:0" json:"low_stock_threshold"`                    // 低库存预警阈值（<=0 表示关闭预警）
	Version           uint64    `gorm:"not null;default:1" json:"version"`                                // 乐观锁版本号，每次成功写入 +1
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt         time.Time `gorm:"index" json:"updated_at"`                                          // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (VariantStock) TableName() string {
	return "variant_stocks"
}

// Available 返回常规池可售数量（在库 - 预占）
func (v *VariantStock) Available() int {
	if v == nil {
		return 0
	}
	return v.Stock - v.ReservedStock
}

// BackorderHeadroom 返回缺货下单剩余额度（-1 表示不限制）
func (v *VariantStock) BackorderHeadroom() int {
	if v == nil || !v.AllowBackorder {
		return 0
	}
	if v.BackorderLimit <= 0 {
		return -1
	}
	headroom := v.BackorderLimit - v.ReservedStock
	if headroom < 0 {
		return 0
	}
	return headroom
}
