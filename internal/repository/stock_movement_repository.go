package repository

import (
	"errors"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"

	"gorm.io/gorm"
)

// StockMovementRepository 库存流水数据访问接口
type StockMovementRepository interface {
	Insert(entry *models.StockMovement) error
	List(filter StockMovementListFilter) ([]models.StockMovement, int64, error)
	WithTx(tx *gorm.DB) StockMovementRepository
}

// GormStockMovementRepository GORM 实现
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建库存流水仓库
func NewStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) StockMovementRepository {
	if tx == nil {
		return r
	}
	return &GormStockMovementRepository{db: tx}
}

// Insert 追加一条流水（创建后不再修改）
func (r *GormStockMovementRepository) Insert(entry *models.StockMovement) error {
	if entry == nil {
		return errors.New("movement entry is nil")
	}
	if entry.VariantID == 0 {
		return errors.New("invalid movement variant id")
	}
	return r.db.Create(entry).Error
}

// List 按过滤条件分页查询流水
func (r *GormStockMovementRepository) List(filter StockMovementListFilter) ([]models.StockMovement, int64, error) {
	query := r.db.Model(&models.StockMovement{})
	if filter.VariantID > 0 {
		query = query.Where("variant_id = ?", filter.VariantID)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.StockMovement
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
