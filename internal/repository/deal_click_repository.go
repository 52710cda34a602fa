package repository

import (
	"time"

	"github.com/dealsphere/dealsphere/internal/models"

	"gorm.io/gorm"
)

// DealClickRepository 点击记录数据访问接口
type DealClickRepository interface {
	Create(click *models.DealClick) error
	List(filter DealClickListFilter) ([]models.DealClick, int64, error)
	CountSince(since time.Time) (int64, error)
	WithTx(tx *gorm.DB) DealClickRepository
}

// GormDealClickRepository GORM 实现
type GormDealClickRepository struct {
	db *gorm.DB
}

// NewDealClickRepository 创建点击记录仓库
func NewDealClickRepository(db *gorm.DB) *GormDealClickRepository {
	return &GormDealClickRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDealClickRepository) WithTx(tx *gorm.DB) DealClickRepository {
	if tx == nil {
		return r
	}
	return &GormDealClickRepository{db: tx}
}

// Create 写入点击记录
func (r *GormDealClickRepository) Create(click *models.DealClick) error {
	return r.db.Create(click).Error
}

// List 点击记录列表
func (r *GormDealClickRepository) List(filter DealClickListFilter) ([]models.DealClick, int64, error) {
	var clicks []models.DealClick
	query := r.db.Model(&models.DealClick{})

	if filter.DealID != "" {
		query = query.Where("deal_id = ?", filter.DealID)
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

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC").Find(&clicks).Error; err != nil {
		return nil, 0, err
	}
	return clicks, total, nil
}

// CountSince 统计指定时间之后的点击量
func (r *GormDealClickRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.DealClick{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
