package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/cache"
	"github.com/dealsphere/dealsphere/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
	dashboardRankingLimit  = 5
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心运营数据。
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range    string             `json:"range"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Timezone string             `json:"timezone"`
	KPI      DashboardKPI       `json:"kpi"`
	Tiers    DashboardTierStats `json:"tiers"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	DealsTotal   int64  `json:"deals_total"`
	DealsCreated int64  `json:"deals_created"`
	ActiveDeals  int64  `json:"active_deals"`
	PendingDeals int64  `json:"pending_deals"`
	AvgScore     string `json:"avg_score"`
	ClicksTotal  int64  `json:"clicks_total"`
	SharesTotal  int64  `json:"shares_total"`
	ImportsTotal int64  `json:"imports_total"`
	PublishRate  string `json:"publish_rate"`
}

// DashboardTierStats 上架优惠分级分布
type DashboardTierStats struct {
	TopDeals    int64 `json:"top_deals"`
	HotDeals    int64 `json:"hot_deals"`
	LatestDeals int64 `json:"latest_deals"`
}

// DashboardTrendResponse 仪表盘趋势响应
type DashboardTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 趋势点
type DashboardTrendPoint struct {
	Date           string `json:"date"`
	DealsCreated   int64  `json:"deals_created"`
	DealsPublished int64  `json:"deals_published"`
	Clicks         int64  `json:"clicks"`
	Shares         int64  `json:"shares"`
}

// DashboardRankingsResponse 仪表盘排行榜响应
type DashboardRankingsResponse struct {
	Range     string                  `json:"range"`
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Timezone  string                  `json:"timezone"`
	TopDeals  []DashboardDealRanking  `json:"top_deals"`
	TopStores []DashboardStoreRanking `json:"top_stores"`
}

// DashboardDealRanking 优惠排行项
type DashboardDealRanking struct {
	DealID     string `json:"deal_id"`
	Title      string `json:"title"`
	Store      string `json:"store"`
	ClickCount int64  `json:"click_count"`
	Popularity int64  `json:"popularity"`
}

// DashboardStoreRanking 商店排行项
type DashboardStoreRanking struct {
	Store       string `json:"store"`
	DealCount   int64  `json:"deal_count"`
	ClicksTotal int64  `json:"clicks_total"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d:%s",
		window.rangeKey,
		window.startAt.Unix(),
		window.endAt.Unix(),
		window.timezone,
	)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	tierStats, err := s.repo.GetTierStats()
	if err != nil {
		return nil, err
	}

	publishRate := 0.0
	if overview.DealsTotal > 0 {
		publishRate = float64(overview.ActiveDeals) / float64(overview.DealsTotal) * 100
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		KPI: DashboardKPI{
			DealsTotal:   overview.DealsTotal,
			DealsCreated: overview.DealsCreated,
			ActiveDeals:  overview.ActiveDeals,
			PendingDeals: overview.PendingDeals,
			AvgScore:     formatScoreValue(overview.AvgScore),
			ClicksTotal:  overview.ClicksTotal,
			SharesTotal:  overview.SharesTotal,
			ImportsTotal: overview.ImportsTotal,
			PublishRate:  formatPercentValue(publishRate),
		},
		Tiers: DashboardTierStats{
			TopDeals:    tierStats.TopDeals,
			HotDeals:    tierStats.HotDeals,
			LatestDeals: tierStats.LatestDeals,
		},
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetTrends 获取仪表盘趋势
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	ingestRows, err := s.repo.GetIngestTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	engagementRows, err := s.repo.GetEngagementTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	ingestMap := make(map[string]repository.DashboardIngestTrendRow, len(ingestRows))
	for _, item := range ingestRows {
		ingestMap[item.Day] = item
	}
	engagementMap := make(map[string]repository.DashboardEngagementTrendRow, len(engagementRows))
	for _, item := range engagementRows {
		engagementMap[item.Day] = item
	}

	points := make([]DashboardTrendPoint, 0)
	for cursor := time.Date(window.startAt.Year(), window.startAt.Month(), window.startAt.Day(), 0, 0, 0, 0, window.startAt.Location()); cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		ingestItem := ingestMap[day]
		engagementItem := engagementMap[day]
		points = append(points, DashboardTrendPoint{
			Date:           day,
			DealsCreated:   ingestItem.DealsCreated,
			DealsPublished: ingestItem.DealsPublished,
			Clicks:         engagementItem.Clicks,
			Shares:         engagementItem.Shares,
		})
	}

	response := &DashboardTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetRankings 获取仪表盘排行榜
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:rankings:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardRankingsResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	dealRows, err := s.repo.GetTopDeals(dashboardRankingLimit)
	if err != nil {
		return nil, err
	}
	storeRows, err := s.repo.GetTopStores(dashboardRankingLimit)
	if err != nil {
		return nil, err
	}

	deals := make([]DashboardDealRanking, 0, len(dealRows))
	for _, item := range dealRows {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "-"
		}
		deals = append(deals, DashboardDealRanking{
			DealID:     item.DealID,
			Title:      title,
			Store:      strings.TrimSpace(item.Store),
			ClickCount: item.ClickCount,
			Popularity: item.Popularity,
		})
	}

	stores := make([]DashboardStoreRanking, 0, len(storeRows))
	for _, item := range storeRows {
		stores = append(stores, DashboardStoreRanking{
			Store:       strings.TrimSpace(item.Store),
			DealCount:   item.DealCount,
			ClicksTotal: item.ClicksTotal,
		})
	}

	response := &DashboardRankingsResponse{
		Range:     window.rangeKey,
		From:      window.startAt.Format(time.RFC3339),
		To:        window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:  window.timezone,
		TopDeals:  deals,
		TopStores: stores,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}

	timezone := strings.TrimSpace(input.Timezone)
	location := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			location = parsed
		} else {
			timezone = ""
		}
	}
	if timezone == "" {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := dashboardWindow{rangeKey: rangeKey, timezone: timezone}

	switch rangeKey {
	case "today":
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.In(location)
		endAt := input.To.In(location)
		if endAt.Before(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if endAt.Sub(startAt) > time.Hour*24*dashboardCustomMaxDays {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt.Add(time.Second)
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

func formatScoreValue(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
