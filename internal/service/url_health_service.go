package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/repository"
)

const (
	defaultURLHealthTimeout   = 5 * time.Second
	defaultURLHealthBatchSize = 50
)

// URLHealthService 优惠链接健康巡检服务
// 说明：分批探测上架优惠的跳转链接，持续失效的直接下架。
type URLHealthService struct {
	cfg        *config.Config
	dealRepo   repository.DealRepository
	httpClient *http.Client
}

// NewURLHealthService 创建链接巡检服务
func NewURLHealthService(cfg *config.Config, dealRepo repository.DealRepository) *URLHealthService {
	timeout := defaultURLHealthTimeout
	if cfg != nil && cfg.Ingest.URLHealthTimeoutMS > 0 {
		timeout = time.Duration(cfg.Ingest.URLHealthTimeoutMS) * time.Millisecond
	}
	return &URLHealthService{
		cfg:      cfg,
		dealRepo: dealRepo,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URLHealthBatchResult 单批巡检结果
type URLHealthBatchResult struct {
	Checked     int    `json:"checked"`
	Deactivated int    `json:"deactivated"`
	NextAfterID string `json:"next_after_id"`
}

// CheckBatch 巡检一批上架优惠；返回游标供下一批继续
func (s *URLHealthService) CheckBatch(ctx context.Context, afterID string, limit int) (*URLHealthBatchResult, error) {
	if limit <= 0 {
		limit = s.batchSize()
	}

	deals, err := s.dealRepo.ListActiveAfterID(afterID, limit)
	if err != nil {
		return nil, err
	}

	result := &URLHealthBatchResult{}
	for i := range deals {
		deal := &deals[i]
		result.Checked++
		result.NextAfterID = deal.ID

		if s.urlAlive(ctx, deal.AffiliateURL) {
			continue
		}

		rows, err := s.dealRepo.Deactivate(deal.ID)
		if err != nil {
			logger.Errorw("deal_deactivate_failed", "deal_id", deal.ID, "error", err)
			continue
		}
		if rows > 0 {
			result.Deactivated++
			logger.Infow("deal_deactivated_dead_url",
				"deal_id", deal.ID,
				"title", deal.Title,
				"url", deal.AffiliateURL,
			)
		}
	}

	if result.Checked < limit {
		result.NextAfterID = ""
	}
	return result, nil
}

// CheckAll 全量巡检（worker 定时任务入口）
func (s *URLHealthService) CheckAll(ctx context.Context) (checked, deactivated int, err error) {
	afterID := ""
	for {
		if ctx.Err() != nil {
			return checked, deactivated, ctx.Err()
		}
		batch, batchErr := s.CheckBatch(ctx, afterID, s.batchSize())
		if batchErr != nil {
			return checked, deactivated, batchErr
		}
		checked += batch.Checked
		deactivated += batch.Deactivated
		if batch.NextAfterID == "" {
			return checked, deactivated, nil
		}
		afterID = batch.NextAfterID
	}
}

func (s *URLHealthService) batchSize() int {
	if s.cfg != nil && s.cfg.Ingest.URLHealthBatchSize > 0 {
		return s.cfg.Ingest.URLHealthBatchSize
	}
	return defaultURLHealthBatchSize
}

// urlAlive 先 HEAD 再回退 GET，2xx/3xx 视为存活
func (s *URLHealthService) urlAlive(ctx context.Context, url string) bool {
	if !validHTTPURL(url) {
		return false
	}

	alive, retryWithGet := s.probe(ctx, http.MethodHead, url)
	if alive {
		return true
	}
	if !retryWithGet {
		return false
	}
	alive, _ = s.probe(ctx, http.MethodGet, url)
	return alive
}

func (s *URLHealthService) probe(ctx context.Context, method, url string) (alive, retryWithGet bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, false
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < http.StatusBadRequest {
		return true, false
	}
	// 部分站点不支持 HEAD
	if method == http.MethodHead && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusForbidden) {
		return false, true
	}
	return false, false
}
