package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"
)

type urlHealthDealRepoStub struct {
	repository.DealRepository
	batches        [][]models.Deal
	batchIndex     int
	deactivatedIDs []string
}

func (s *urlHealthDealRepoStub) ListActiveAfterID(afterID string, limit int) ([]models.Deal, error) {
	if s.batchIndex >= len(s.batches) {
		return nil, nil
	}
	batch := s.batches[s.batchIndex]
	s.batchIndex++
	return batch, nil
}

func (s *urlHealthDealRepoStub) Deactivate(id string) (int64, error) {
	s.deactivatedIDs = append(s.deactivatedIDs, id)
	return 1, nil
}

func TestCheckBatchDeactivatesDeadURLs(t *testing.T) {
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer alive.Close()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dead.Close()

	repo := &urlHealthDealRepoStub{batches: [][]models.Deal{{
		{ID: "deal-1", Title: "Alive", AffiliateURL: alive.URL},
		{ID: "deal-2", Title: "Dead", AffiliateURL: dead.URL},
	}}}
	svc := NewURLHealthService(&config.Config{}, repo)

	result, err := svc.CheckBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("check batch returned error: %v", err)
	}
	if result.Checked != 2 {
		t.Fatalf("checked want 2 got %d", result.Checked)
	}
	if result.Deactivated != 1 {
		t.Fatalf("deactivated want 1 got %d", result.Deactivated)
	}
	if len(repo.deactivatedIDs) != 1 || repo.deactivatedIDs[0] != "deal-2" {
		t.Fatalf("deactivated ids = %v, want only the dead deal", repo.deactivatedIDs)
	}
	if result.NextAfterID != "" {
		t.Fatalf("short batch must clear the cursor, got %q", result.NextAfterID)
	}
}

func TestCheckBatchRetriesHeadWithGet(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &urlHealthDealRepoStub{batches: [][]models.Deal{{
		{ID: "deal-1", Title: "Head Unsupported", AffiliateURL: server.URL},
	}}}
	svc := NewURLHealthService(&config.Config{}, repo)

	result, err := svc.CheckBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("check batch returned error: %v", err)
	}
	if result.Deactivated != 0 {
		t.Fatalf("deal should survive after GET fallback, deactivated=%d", result.Deactivated)
	}
	if len(methods) != 2 || methods[0] != http.MethodHead || methods[1] != http.MethodGet {
		t.Fatalf("methods = %v, want HEAD then GET", methods)
	}
}

func TestCheckBatchInvalidURLCountsAsDead(t *testing.T) {
	repo := &urlHealthDealRepoStub{batches: [][]models.Deal{{
		{ID: "deal-1", Title: "Bad Scheme", AffiliateURL: "ftp://example.com/deal"},
	}}}
	svc := NewURLHealthService(&config.Config{}, repo)

	result, err := svc.CheckBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("check batch returned error: %v", err)
	}
	if result.Deactivated != 1 {
		t.Fatalf("invalid url should deactivate, got %d", result.Deactivated)
	}
}

func TestCheckAllWalksCursorUntilDone(t *testing.T) {
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer alive.Close()

	cfg := &config.Config{}
	cfg.Ingest.URLHealthBatchSize = 2
	repo := &urlHealthDealRepoStub{batches: [][]models.Deal{
		{
			{ID: "deal-1", AffiliateURL: alive.URL},
			{ID: "deal-2", AffiliateURL: alive.URL},
		},
		{
			{ID: "deal-3", AffiliateURL: alive.URL},
		},
	}}
	svc := NewURLHealthService(cfg, repo)

	checked, deactivated, err := svc.CheckAll(context.Background())
	if err != nil {
		t.Fatalf("check all returned error: %v", err)
	}
	if checked != 3 {
		t.Fatalf("checked want 3 got %d", checked)
	}
	if deactivated != 0 {
		t.Fatalf("deactivated want 0 got %d", deactivated)
	}
	if repo.batchIndex != 2 {
		t.Fatalf("batches consumed want 2 got %d", repo.batchIndex)
	}
}
