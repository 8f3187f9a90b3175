package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（库存子系统仅依赖其标识与基本展示字段）
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`      // 商品名称
	Slug      string         `gorm:"type:varchar(255);uniqueIndex" json:"slug"`   // 唯一标识
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`         // 是否上架
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间

	Variants []VariantStock `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 关联变体库存
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
