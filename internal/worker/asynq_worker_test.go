package worker

import (
	"context"
	"testing"
	"time"

	"github.com/dealsphere/dealsphere/internal/provider"
	"github.com/dealsphere/dealsphere/internal/queue"
	"github.com/dealsphere/dealsphere/internal/repository"

	"github.com/hibiken/asynq"
)

type cleanupDealRepoStub struct {
	repository.DealRepository
	cutoff  time.Time
	removed int64
	calls   int
}

func (s *cleanupDealRepoStub) DeleteInactiveBefore(cutoff time.Time) (int64, error) {
	s.calls++
	s.cutoff = cutoff
	return s.removed, nil
}

func TestHandleUploadCleanupUsesPayloadRetention(t *testing.T) {
	repo := &cleanupDealRepoStub{removed: 3}
	consumer := NewConsumer(&provider.Container{DealRepo: repo})

	task, err := queue.NewUploadCleanupTask(queue.UploadCleanupPayload{RetentionDays: 7})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := consumer.handleUploadCleanup(context.Background(), task); err != nil {
		t.Fatalf("handle cleanup: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("cleanup calls = %d, want 1", repo.calls)
	}

	wantCutoff := time.Now().AddDate(0, 0, -7)
	if diff := repo.cutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff = %v, want about %v", repo.cutoff, wantCutoff)
	}
}

func TestHandleUploadCleanupDefaultsRetention(t *testing.T) {
	repo := &cleanupDealRepoStub{}
	consumer := NewConsumer(&provider.Container{DealRepo: repo})

	task, err := queue.NewUploadCleanupTask(queue.UploadCleanupPayload{})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := consumer.handleUploadCleanup(context.Background(), task); err != nil {
		t.Fatalf("handle cleanup: %v", err)
	}
	if repo.cutoff.After(time.Now().AddDate(0, 0, -29)) {
		t.Fatalf("cutoff %v should fall back to the default retention window", repo.cutoff)
	}
}

func TestHandleUploadCleanupBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{DealRepo: &cleanupDealRepoStub{}})
	task := asynq.NewTask(queue.TaskUploadCleanup, []byte("{not json"))
	if err := consumer.handleUploadCleanup(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
}

func TestHandleFeedFetchSkipsWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewFeedFetchTask(queue.FeedFetchPayload{SourceName: "amazon"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := consumer.handleFeedFetch(context.Background(), task); err != nil {
		t.Fatalf("feed fetch without service should be a no-op, got %v", err)
	}
}
