package repository

import (
	"errors"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"

	"gorm.io/gorm"
)

// LowStockAlertRepository 低库存预警数据访问接口
type LowStockAlertRepository interface {
	GetByVariant(variantID uint) (*models.LowStockAlert, error)
	Create(row *models.LowStockAlert) error
	Update(row *models.LowStockAlert) error
	List(filter LowStockAlertListFilter) ([]models.LowStockAlert, int64, error)
	WithTx(tx *gorm.DB) LowStockAlertRepository
}

// GormLowStockAlertRepository GORM 实现
type GormLowStockAlertRepository struct {
	db *gorm.DB
}

// NewLowStockAlertRepository 创建低库存预警仓库
func NewLowStockAlertRepository(db *gorm.DB) *GormLowStockAlertRepository {
	return &GormLowStockAlertRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLowStockAlertRepository) WithTx(tx *gorm.DB) LowStockAlertRepository {
	if tx == nil {
		return r
	}
	return &GormLowStockAlertRepository{db: tx}
}

// GetByVariant 获取变体的预警行（不存在返回 nil）
func (r *GormLowStockAlertRepository) GetByVariant(variantID uint) (*models.LowStockAlert, error) {
	if variantID == 0 {
		return nil, errors.New("invalid variant id")
	}
	var row models.LowStockAlert
	if err := r.db.Where("variant_id = ?", variantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create 创建预警行
func (r *GormLowStockAlertRepository) Create(row *models.LowStockAlert) error {
	if row == nil {
		return errors.New("alert row is nil")
	}
	return r.db.Create(row).Error
}

// Update 整行更新预警（就地转移状态，不新建历史行）
func (r *GormLowStockAlertRepository) Update(row *models.LowStockAlert) error {
	if row == nil || row.ID == 0 {
		return errors.New("alert row is nil or unsaved")
	}
	return r.db.Save(row).Error
}

// List 按状态分页查询预警
func (r *GormLowStockAlertRepository) List(filter LowStockAlertListFilter) ([]models.LowStockAlert, int64, error) {
	query := r.db.Model(&models.LowStockAlert{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.LowStockAlert
	if err := applyPagination(query.Order("updated_at DESC"), filter.Page, filter.PageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
