package queue

import (
	"encoding/json"

	"github.com/dealsphere/dealsphere/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskFeedFetch 联盟 Feed 抓取任务
	TaskFeedFetch = constants.TaskFeedFetch
	// TaskDealURLHealth 优惠链接健康检查任务
	TaskDealURLHealth = constants.TaskDealURLHealth
	// TaskUploadCleanup 过期导入记录清理任务
	TaskUploadCleanup = constants.TaskUploadCleanup
)

// FeedFetchPayload Feed 抓取任务载荷
type FeedFetchPayload struct {
	SourceName string `json:"source_name"`
}

// DealURLHealthPayload 链接健康检查任务载荷
type DealURLHealthPayload struct {
	AfterID string `json:"after_id"`
	Limit   int    `json:"limit"`
}

// UploadCleanupPayload 导入记录清理任务载荷
type UploadCleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewFeedFetchTask 创建 Feed 抓取任务
func NewFeedFetchTask(payload FeedFetchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFeedFetch, body), nil
}

// NewDealURLHealthTask 创建链接健康检查任务
func NewDealURLHealthTask(payload DealURLHealthPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDealURLHealth, body), nil
}

// NewUploadCleanupTask 创建导入记录清理任务
func NewUploadCleanupTask(payload UploadCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUploadCleanup, body), nil
}
