package repository

import (
	"time"

	"github.com/dealsphere/dealsphere/internal/models"

	"gorm.io/gorm"
)

// SocialShareRepository 分享记录数据访问接口
type SocialShareRepository interface {
	Create(share *models.SocialShare) error
	CountSince(since time.Time) (int64, error)
	CountByPlatformSince(since time.Time) (map[string]int64, error)
	WithTx(tx *gorm.DB) SocialShareRepository
}

// GormSocialShareRepository GORM 实现
type GormSocialShareRepository struct {
	db *gorm.DB
}

// NewSocialShareRepository 创建分享记录仓库
func NewSocialShareRepository(db *gorm.DB) *GormSocialShareRepository {
	return &GormSocialShareRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSocialShareRepository) WithTx(tx *gorm.DB) SocialShareRepository {
	if tx == nil {
		return r
	}
	return &GormSocialShareRepository{db: tx}
}

// Create 写入分享记录
func (r *GormSocialShareRepository) Create(share *models.SocialShare) error {
	return r.db.Create(share).Error
}

// CountSince 统计指定时间之后的分享量
func (r *GormSocialShareRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SocialShare{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPlatformSince 按平台统计分享量
func (r *GormSocialShareRepository) CountByPlatformSince(since time.Time) (map[string]int64, error) {
	type row struct {
		Platform string
		Count    int64
	}
	rows := make([]row, 0)
	err := r.db.Model(&models.SocialShare{}).
		Select("platform", "COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, item := range rows {
		result[item.Platform] = item.Count
	}
	return result, nil
}
