package repository

import (
	"errors"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"

	"gorm.io/gorm"
)

// StockDeltas 变体库存字段增量（带符号，0 表示不变动）
type StockDeltas struct {
	Stock         int
	ReservedStock int
	PreorderStock int
}

// VariantStockRepository 变体库存数据访问接口
type VariantStockRepository interface {
	GetByID(id uint) (*models.VariantStock, error)
	GetBySKUCode(skuCode string) (*models.VariantStock, error)
	ListWithThreshold() ([]models.VariantStock, error)
	Create(item *models.VariantStock) error
	ConditionalApply(id uint, expectedVersion uint64, deltas StockDeltas) (int64, error)
	ApplyRelease(id uint, quantity int, restorePreorder bool) (int64, error)
	WithTx(tx *gorm.DB) VariantStockRepository
}

// GormVariantStockRepository GORM 实现
type GormVariantStockRepository struct {
	db *gorm.DB
}

// NewVariantStockRepository 创建变体库存仓库
func NewVariantStockRepository(db *gorm.DB) *GormVariantStockRepository {
	return &GormVariantStockRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVariantStockRepository) WithTx(tx *gorm.DB) VariantStockRepository {
	if tx == nil {
		return r
	}
	return &GormVariantStockRepository{db: tx}
}

// GetByID 根据 ID 获取变体库存（含版本号）
func (r *GormVariantStockRepository) GetByID(id uint) (*models.VariantStock, error) {
	if id == 0 {
		return nil, errors.New("invalid variant id")
	}
	var item models.VariantStock
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetBySKUCode 根据 SKU 编码获取变体库存
func (r *GormVariantStockRepository) GetBySKUCode(skuCode string) (*models.VariantStock, error) {
	if skuCode == "" {
		return nil, errors.New("invalid sku code")
	}
	var item models.VariantStock
	if err := r.db.Where("sku_code = ?", skuCode).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListWithThreshold 获取开启低库存预警的全部变体
func (r *GormVariantStockRepository) ListWithThreshold() ([]models.VariantStock, error) {
	var items []models.VariantStock
	if err := r.db.Where("low_stock_threshold > 0").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建变体库存
func (r *GormVariantStockRepository) Create(item *models.VariantStock) error {
	if item == nil {
		return errors.New("variant stock is nil")
	}
	if item.Version == 0 {
		item.Version = 1
	}
	return r.db.Create(item).Error
}

// ConditionalApply 以版本号为前置条件应用字段增量，版本号 +1。
// 返回受影响行数：0 表示乐观锁竞争失败，1 表示成功。
func (r *GormVariantStockRepository) ConditionalApply(id uint, expectedVersion uint64, deltas StockDeltas) (int64, error) {
	if id == 0 || expectedVersion == 0 {
		return 0, errors.New("invalid conditional apply params")
	}
	updates := map[string]interface{}{
		"version": gorm.Expr("version + 1"),
	}
	if deltas.Stock != 0 {
		updates["stock"] = gorm.Expr("stock + ?", deltas.Stock)
	}
	if deltas.ReservedStock != 0 {
		updates["reserved_stock"] = gorm.Expr("reserved_stock + ?", deltas.ReservedStock)
	}
	if deltas.PreorderStock != 0 {
		updates["preorder_stock"] = gorm.Expr("preorder_stock + ?", deltas.PreorderStock)
	}
	result := r.db.Model(&models.VariantStock{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ApplyRelease 无条件释放预占：reserved_stock 减至最低 0，预售池按需回补。
// 不校验版本号（见 Release 的设计取舍），版本号仍随写入 +1。
func (r *GormVariantStockRepository) ApplyRelease(id uint, quantity int, restorePreorder bool) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid release params")
	}
	updates := map[string]interface{}{
		// CASE 表达式在 sqlite 与 postgres 下行为一致，避免 MAX/GREATEST 方言差异
		"reserved_stock": gorm.Expr("CASE WHEN reserved_stock >= ? THEN reserved_stock - ? ELSE 0 END", quantity, quantity),
		"version":        gorm.Expr("version + 1"),
	}
	if restorePreorder {
		updates["preorder_stock"] = gorm.Expr("preorder_stock + ?", quantity)
	}
	result := r.db.Model(&models.VariantStock{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
