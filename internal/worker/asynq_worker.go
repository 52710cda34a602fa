package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/provider"
	"github.com/dealsphere/dealsphere/internal/queue"
	"github.com/dealsphere/dealsphere/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskFeedFetch, c.handleFeedFetch)
	mux.HandleFunc(queue.TaskDealURLHealth, c.handleDealURLHealth)
	mux.HandleFunc(queue.TaskUploadCleanup, c.handleUploadCleanup)
}

func (c *Consumer) handleFeedFetch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_feed_fetch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.FeedFetchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_feed_fetch_unmarshal_failed", "error", err)
		return err
	}
	if c.FeedService == nil {
		logger.Warnw("worker_feed_fetch_skip_feed_service_nil", "source", payload.SourceName)
		return nil
	}
	outcomes, err := c.FeedService.FetchSource(ctx, payload.SourceName)
	if err != nil {
		if errors.Is(err, service.ErrFeedSourceUnknown) {
			logger.Debugw("worker_feed_fetch_skip_unknown_source", "source", payload.SourceName)
			return nil
		}
		logger.Warnw("worker_feed_fetch_failed", "source", payload.SourceName, "error", err)
		return err
	}
	for _, outcome := range outcomes {
		if outcome.Error != "" {
			logger.Warnw("worker_feed_fetch_source_failed", "source", outcome.Source, "error", outcome.Error)
		}
	}
	return nil
}

func (c *Consumer) handleDealURLHealth(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_url_health_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DealURLHealthPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_url_health_unmarshal_failed", "error", err)
		return err
	}
	if c.URLHealthService == nil {
		logger.Warnw("worker_url_health_skip_service_nil")
		return nil
	}

	batch, err := c.URLHealthService.CheckBatch(ctx, payload.AfterID, payload.Limit)
	if err != nil {
		logger.Warnw("worker_url_health_batch_failed", "after_id", payload.AfterID, "error", err)
		return err
	}
	logger.Infow("worker_url_health_batch_done",
		"checked", batch.Checked,
		"deactivated", batch.Deactivated,
		"next_after_id", batch.NextAfterID,
	)

	// 还有剩余则接力推进下一批
	if batch.NextAfterID != "" && c.QueueClient.Enabled() {
		next := queue.DealURLHealthPayload{AfterID: batch.NextAfterID, Limit: payload.Limit}
		if err := c.QueueClient.EnqueueDealURLHealth(next); err != nil {
			logger.Warnw("worker_url_health_enqueue_next_failed", "after_id", batch.NextAfterID, "error", err)
		}
	}
	return nil
}

func (c *Consumer) handleUploadCleanup(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_upload_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.UploadCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_upload_cleanup_unmarshal_failed", "error", err)
		return err
	}
	if c.DealRepo == nil {
		logger.Warnw("worker_upload_cleanup_skip_repo_nil")
		return nil
	}

	retentionDays := payload.RetentionDays
	if retentionDays <= 0 {
		retentionDays = constants.DefaultCleanupRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := c.DealRepo.DeleteInactiveBefore(cutoff)
	if err != nil {
		logger.Warnw("worker_upload_cleanup_failed", "cutoff", cutoff, "error", err)
		return err
	}
	logger.Infow("worker_upload_cleanup_done", "removed", removed, "cutoff", cutoff)
	return nil
}
