package repository

import (
	"fmt"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetIngestTrends(startAt, endAt time.Time) ([]DashboardIngestTrendRow, error)
	GetEngagementTrends(startAt, endAt time.Time) ([]DashboardEngagementTrendRow, error)
	GetTierStats() (DashboardTierStatsRow, error)
	GetTopDeals(limit int) ([]DashboardDealRankingRow, error)
	GetTopStores(limit int) ([]DashboardStoreRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	DealsTotal   int64
	DealsCreated int64
	ActiveDeals  int64
	PendingDeals int64
	AvgScore     float64
	ClicksTotal  int64
	SharesTotal  int64
	ImportsTotal int64
}

// DashboardIngestTrendRow 接入趋势统计
type DashboardIngestTrendRow struct {
	Day            string
	DealsCreated   int64
	DealsPublished int64
}

// DashboardEngagementTrendRow 互动趋势统计
type DashboardEngagementTrendRow struct {
	Day    string
	Clicks int64
	Shares int64
}

// DashboardTierStatsRow 分级统计
type DashboardTierStatsRow struct {
	TopDeals    int64
	HotDeals    int64
	LatestDeals int64
}

// DashboardDealRankingRow 优惠排行原始行
type DashboardDealRankingRow struct {
	DealID     string
	Title      string
	Store      string
	ClickCount int64
	Popularity int64
}

// DashboardStoreRankingRow 商店排行原始行
type DashboardStoreRankingRow struct {
	Store       string
	DealCount   int64
	ClicksTotal int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	dealBase := func() *gorm.DB {
		return r.db.Model(&models.Deal{})
	}

	if err := dealBase().Count(&result.DealsTotal).Error; err != nil {
		return result, err
	}
	if err := dealBase().
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.DealsCreated).Error; err != nil {
		return result, err
	}
	if err := dealBase().
		Where("is_active = ? AND is_ai_approved = ?", true, true).
		Count(&result.ActiveDeals).Error; err != nil {
		return result, err
	}
	if err := dealBase().
		Where("is_active = ? AND is_ai_approved = ?", true, false).
		Count(&result.PendingDeals).Error; err != nil {
		return result, err
	}
	if err := dealBase().
		Where("is_active = ? AND is_ai_approved = ?", true, true).
		Select("COALESCE(AVG(ai_score), 0)").
		Scan(&result.AvgScore).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.DealClick{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.ClicksTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.SocialShare{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.SharesTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.UploadLog{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.ImportsTotal).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetIngestTrends 获取接入趋势
func (r *GormDashboardRepository) GetIngestTrends(startAt, endAt time.Time) ([]DashboardIngestTrendRow, error) {
	type totalRow struct {
		Day   string
		Total int64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var totals []totalRow
	if err := r.db.Model(&models.Deal{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var published []totalRow
	if err := r.db.Model(&models.Deal{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ? AND is_active = ? AND is_ai_approved = ?", startAt, endAt, true, true).
		Group(dayExpr).
		Order("day asc").
		Scan(&published).Error; err != nil {
		return nil, err
	}

	publishedMap := make(map[string]int64, len(published))
	for _, item := range published {
		publishedMap[item.Day] = item.Total
	}

	result := make([]DashboardIngestTrendRow, 0, len(totals))
	for _, item := range totals {
		result = append(result, DashboardIngestTrendRow{
			Day:            item.Day,
			DealsCreated:   item.Total,
			DealsPublished: publishedMap[item.Day],
		})
	}
	return result, nil
}

// GetEngagementTrends 获取互动趋势
func (r *GormDashboardRepository) GetEngagementTrends(startAt, endAt time.Time) ([]DashboardEngagementTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var clickRows []countRow
	if err := r.db.Model(&models.DealClick{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&clickRows).Error; err != nil {
		return nil, err
	}

	var shareRows []countRow
	if err := r.db.Model(&models.SocialShare{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&shareRows).Error; err != nil {
		return nil, err
	}

	clickMap := make(map[string]int64, len(clickRows))
	for _, item := range clickRows {
		clickMap[item.Day] = item.Total
	}
	shareMap := make(map[string]int64, len(shareRows))
	for _, item := range shareRows {
		shareMap[item.Day] = item.Total
	}

	seen := make(map[string]struct{}, len(clickRows)+len(shareRows))
	result := make([]DashboardEngagementTrendRow, 0)
	push := func(day string) {
		if day == "" {
			return
		}
		if _, ok := seen[day]; ok {
			return
		}
		seen[day] = struct{}{}
		result = append(result, DashboardEngagementTrendRow{
			Day:    day,
			Clicks: clickMap[day],
			Shares: shareMap[day],
		})
	}
	for _, item := range clickRows {
		push(item.Day)
	}
	for _, item := range shareRows {
		push(item.Day)
	}

	return result, nil
}

// GetTierStats 获取已发布优惠的分级分布
func (r *GormDashboardRepository) GetTierStats() (DashboardTierStatsRow, error) {
	result := DashboardTierStatsRow{}

	type row struct {
		DealType string
		Total    int64
	}
	rows := make([]row, 0, 3)
	if err := r.db.Model(&models.Deal{}).
		Select("deal_type, COUNT(*) as total").
		Where("is_active = ? AND is_ai_approved = ?", true, true).
		Group("deal_type").
		Scan(&rows).Error; err != nil {
		return result, err
	}

	for _, item := range rows {
		switch item.DealType {
		case constants.DealTypeTop:
			result.TopDeals = item.Total
		case constants.DealTypeHot:
			result.HotDeals = item.Total
		case constants.DealTypeLatest:
			result.LatestDeals = item.Total
		}
	}
	return result, nil
}

// GetTopDeals 获取点击排行榜
func (r *GormDashboardRepository) GetTopDeals(limit int) ([]DashboardDealRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardDealRankingRow, 0, limit)
	if err := r.db.Model(&models.Deal{}).
		Select("id as deal_id, title, store, click_count, popularity").
		Where("is_active = ? AND is_ai_approved = ?", true, true).
		Order("click_count DESC, popularity DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopStores 获取商店排行榜
func (r *GormDashboardRepository) GetTopStores(limit int) ([]DashboardStoreRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardStoreRankingRow, 0, limit)
	if err := r.db.Model(&models.Deal{}).
		Select("store, COUNT(*) as deal_count, COALESCE(SUM(click_count), 0) as clicks_total").
		Where("is_active = ? AND is_ai_approved = ? AND store != ''", true, true).
		Group("store").
		Order("clicks_total DESC, deal_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
