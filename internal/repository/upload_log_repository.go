package repository

import (
	"github.com/dealsphere/dealsphere/internal/models"

	"gorm.io/gorm"
)

// UploadLogRepository 导入记录数据访问接口
type UploadLogRepository interface {
	Create(log *models.UploadLog) error
	List(filter UploadLogListFilter) ([]models.UploadLog, int64, error)
	ListRecent(limit int) ([]models.UploadLog, error)
}

// GormUploadLogRepository GORM 实现
type GormUploadLogRepository struct {
	db *gorm.DB
}

// NewUploadLogRepository 创建导入记录仓库
func NewUploadLogRepository(db *gorm.DB) *GormUploadLogRepository {
	return &GormUploadLogRepository{db: db}
}

// Create 写入导入记录
func (r *GormUploadLogRepository) Create(log *models.UploadLog) error {
	return r.db.Create(log).Error
}

// List 导入记录列表
func (r *GormUploadLogRepository) List(filter UploadLogListFilter) ([]models.UploadLog, int64, error) {
	var logs []models.UploadLog
	query := r.db.Model(&models.UploadLog{})

	if filter.SourceAPI != "" {
		query = query.Where("source_api = ?", filter.SourceAPI)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListRecent 最近的导入记录
func (r *GormUploadLogRepository) ListRecent(limit int) ([]models.UploadLog, error) {
	if limit <= 0 {
		limit = 10
	}
	logs := make([]models.UploadLog, 0, limit)
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
