package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"

	"gorm.io/gorm"
)

// DealRepository 优惠数据访问接口
type DealRepository interface {
	List(filter DealListFilter) ([]models.Deal, int64, error)
	GetByID(id string) (*models.Deal, error)
	Create(deal *models.Deal) error
	Update(deal *models.Deal) error
	Delete(id string) error
	DistinctCategories() ([]string, error)
	DistinctStores() ([]string, error)
	IncrementClick(id string) (int64, error)
	IncrementShare(id string) (int64, error)
	ListActiveAfterID(afterID string, limit int) ([]models.Deal, error)
	Deactivate(id string) (int64, error)
	RecomputePopularity() (int64, error)
	DeleteInactiveBefore(cutoff time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) DealRepository
}

// GormDealRepository GORM 实现
type GormDealRepository struct {
	db *gorm.DB
}

// NewDealRepository 创建优惠仓库
func NewDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDealRepository) WithTx(tx *gorm.DB) DealRepository {
	if tx == nil {
		return r
	}
	return &GormDealRepository{db: tx}
}

// Transaction 执行事务
func (r *GormDealRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 优惠列表（排序规则随分级变化：top 按热度、hot 按点击、默认按创建时间）
func (r *GormDealRepository) List(filter DealListFilter) ([]models.Deal, int64, error) {
	var deals []models.Deal

	query := r.db.Model(&models.Deal{})
	if filter.DealType != "" {
		query = query.Where("deal_type = ?", filter.DealType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Store != "" {
		query = query.Where("store = ?", filter.Store)
	}
	if filter.SourceAPI != "" {
		query = query.Where("source_api = ?", filter.SourceAPI)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsApproved != nil {
		query = query.Where("is_ai_approved = ?", *filter.IsApproved)
	}
	if filter.OnlyPending {
		query = query.Where("is_active = ? AND is_ai_approved = ?", true, false)
	}
	if filter.MinScore != nil {
		query = query.Where("ai_score >= ?", *filter.MinScore)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"title", "description", "store"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order(dealListOrder(filter.DealType)).Find(&deals).Error; err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

func dealListOrder(dealType string) string {
	switch dealType {
	case constants.DealTypeTop:
		return "popularity DESC, created_at DESC"
	case constants.DealTypeHot:
		return "click_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// GetByID 根据 ID 获取优惠
func (r *GormDealRepository) GetByID(id string) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.Where("id = ?", id).First(&deal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

// Create 创建优惠
func (r *GormDealRepository) Create(deal *models.Deal) error {
	return r.db.Create(deal).Error
}

// Update 更新优惠
func (r *GormDealRepository) Update(deal *models.Deal) error {
	return r.db.Save(deal).Error
}

// Delete 删除优惠（软删除）
func (r *GormDealRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Deal{}).Error
}

// DistinctCategories 已发布优惠的去重分类列表
func (r *GormDealRepository) DistinctCategories() ([]string, error) {
	values := make([]string, 0)
	err := r.db.Model(&models.Deal{}).
		Where("is_active = ? AND is_ai_approved = ? AND category != ''", true, true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// DistinctStores 已发布优惠的去重商店列表
func (r *GormDealRepository) DistinctStores() ([]string, error) {
	values := make([]string, 0)
	err := r.db.Model(&models.Deal{}).
		Where("is_active = ? AND is_ai_approved = ? AND store != ''", true, true).
		Distinct("store").
		Order("store ASC").
		Pluck("store", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// IncrementClick 点击计数与热度原子自增（仅已发布优惠）
func (r *GormDealRepository) IncrementClick(id string) (int64, error) {
	result := r.db.Model(&models.Deal{}).
		Where("id = ? AND is_active = ? AND is_ai_approved = ?", id, true, true).
		Updates(map[string]interface{}{
			"click_count": gorm.Expr("click_count + 1"),
			"popularity":  gorm.Expr("popularity + ?", constants.PopularityWeightClick),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementShare 分享计数与热度原子自增（仅已发布优惠）
func (r *GormDealRepository) IncrementShare(id string) (int64, error) {
	result := r.db.Model(&models.Deal{}).
		Where("id = ? AND is_active = ? AND is_ai_approved = ?", id, true, true).
		Updates(map[string]interface{}{
			"share_count": gorm.Expr("share_count + 1"),
			"popularity":  gorm.Expr("popularity + ?", constants.PopularityWeightShare),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListActiveAfterID 按主键游标分批获取上架优惠（链接巡检用）
func (r *GormDealRepository) ListActiveAfterID(afterID string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 50
	}
	var deals []models.Deal
	query := r.db.Model(&models.Deal{}).Where("is_active = ?", true)
	if afterID != "" {
		query = query.Where("id > ?", afterID)
	}
	if err := query.Order("id ASC").Limit(limit).Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// Deactivate 下架优惠
func (r *GormDealRepository) Deactivate(id string) (int64, error) {
	result := r.db.Model(&models.Deal{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RecomputePopularity 按点击/分享权重重算全量热度
func (r *GormDealRepository) RecomputePopularity() (int64, error) {
	result := r.db.Model(&models.Deal{}).
		Where("1 = 1").
		Update("popularity", gorm.Expr(
			"click_count * ? + share_count * ?",
			constants.PopularityWeightClick,
			constants.PopularityWeightShare,
		))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteInactiveBefore 清理长期被驳回的历史优惠
func (r *GormDealRepository) DeleteInactiveBefore(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("is_active = ? AND is_ai_approved = ? AND updated_at < ?", false, false, cutoff).
		Delete(&models.Deal{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
