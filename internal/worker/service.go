package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultFeedFetchInterval  = 30 * time.Minute
	defaultPopularityInterval = 10 * time.Minute
	uploadCleanupInterval     = 24 * time.Hour
	urlHealthInterval         = 6 * time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil {
		go s.runFeedFetchLoop(ctx)
		go s.runPopularityLoop(ctx)
		go s.runURLHealthLoop(ctx)
		go s.runUploadCleanupLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runFeedFetchLoop 定时推送全量 Feed 抓取任务
func (s *Service) runFeedFetchLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || !s.consumer.QueueClient.Enabled() {
		return
	}
	cfg := s.consumer.Config
	if cfg == nil || len(cfg.Feeds.Sources) == 0 {
		return
	}

	interval := defaultFeedFetchInterval
	if cfg.Feeds.FetchIntervalMinutes > 0 {
		interval = time.Duration(cfg.Feeds.FetchIntervalMinutes) * time.Minute
	}

	runOnce := func() {
		if err := s.consumer.QueueClient.EnqueueFeedFetch(queue.FeedFetchPayload{}); err != nil {
			logger.Warnw("worker_feed_fetch_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runPopularityLoop 定时按点击/分享权重重算热度
func (s *Service) runPopularityLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.DealRepo == nil {
		return
	}
	cfg := s.consumer.Config

	interval := defaultPopularityInterval
	if cfg != nil && cfg.Ingest.PopularityIntervalMinutes > 0 {
		interval = time.Duration(cfg.Ingest.PopularityIntervalMinutes) * time.Minute
	}

	runOnce := func() {
		updated, err := s.consumer.DealRepo.RecomputePopularity()
		if err != nil {
			logger.Warnw("worker_popularity_recompute_failed", "error", err)
			return
		}
		logger.Debugw("worker_popularity_recomputed", "updated", updated)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runURLHealthLoop 定时从头推送链接巡检任务，后续批次由 worker 接力
func (s *Service) runURLHealthLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || !s.consumer.QueueClient.Enabled() {
		return
	}

	runOnce := func() {
		if err := s.consumer.QueueClient.EnqueueDealURLHealth(queue.DealURLHealthPayload{}); err != nil {
			logger.Warnw("worker_url_health_enqueue_failed", "error", err)
		}
	}

	ticker := time.NewTicker(urlHealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runUploadCleanupLoop 每日推送历史优惠清理任务
func (s *Service) runUploadCleanupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || !s.consumer.QueueClient.Enabled() {
		return
	}
	cfg := s.consumer.Config

	retentionDays := 0
	if cfg != nil {
		retentionDays = cfg.Ingest.CleanupRetentionDays
	}

	runOnce := func() {
		payload := queue.UploadCleanupPayload{RetentionDays: retentionDays}
		if err := s.consumer.QueueClient.EnqueueUploadCleanup(payload); err != nil {
			logger.Warnw("worker_upload_cleanup_enqueue_failed", "error", err)
		}
	}

	ticker := time.NewTicker(uploadCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
