package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dealsphere/dealsphere/internal/aiscore"
	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"
)

type flakyDealRepoStub struct {
	repository.DealRepository
	created     []*models.Deal
	failOnTitle string
}

func (s *flakyDealRepoStub) Create(deal *models.Deal) error {
	if s.failOnTitle != "" && deal.Title == s.failOnTitle {
		return errors.New("storage unavailable")
	}
	s.created = append(s.created, deal)
	return nil
}

type uploadLogRepoStub struct {
	repository.UploadLogRepository
	logs []*models.UploadLog
}

func (s *uploadLogRepoStub) Create(log *models.UploadLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func newBulkImportService(repo repository.DealRepository, uploadRepo repository.UploadLogRepository) *BulkImportService {
	cfg := &config.Config{}
	scorer := &scorerStub{verdict: aiscore.Verdict{IsValid: true, Score: 9, DealType: constants.DealTypeTop}}
	return NewBulkImportService(cfg, NewIngestService(cfg, repo, scorer), uploadRepo)
}

func TestImportCandidatesEmptyBatch(t *testing.T) {
	svc := newBulkImportService(&flakyDealRepoStub{}, nil)

	result := svc.ImportCandidates(context.Background(), nil, constants.DealSourceBulkImport)
	if result.Total != 0 || result.Created != 0 || result.Rejected != 0 {
		t.Fatalf("empty batch result = %+v", result)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(result.Items))
	}
}

func TestImportCandidatesIndependenceAndOrder(t *testing.T) {
	repo := &flakyDealRepoStub{}
	svc := newBulkImportService(repo, nil)

	good := validCandidateInput()
	bad := validCandidateInput()
	bad.Title = ""
	alsoGood := validCandidateInput()
	alsoGood.Title = "Second valid deal"

	result := svc.ImportCandidates(context.Background(), []DealCandidateInput{good, bad, alsoGood}, constants.DealSourceBulkImport)

	if result.Total != 3 || result.Created != 2 || result.Rejected != 1 {
		t.Fatalf("summary = %+v", result)
	}
	for i, item := range result.Items {
		if item.Index != i {
			t.Fatalf("item %d has index %d, outcomes must keep input order", i, item.Index)
		}
	}
	if result.Items[1].Outcome.Created {
		t.Fatalf("structurally broken item must be rejected")
	}
	if !result.Items[0].Outcome.Created || !result.Items[2].Outcome.Created {
		t.Fatalf("valid items must be created independently of the broken one")
	}
}

func TestImportCandidatesStorageFailureIsolated(t *testing.T) {
	repo := &flakyDealRepoStub{failOnTitle: "Poison item"}
	svc := newBulkImportService(repo, nil)

	poison := validCandidateInput()
	poison.Title = "Poison item"

	result := svc.ImportCandidates(context.Background(), []DealCandidateInput{validCandidateInput(), poison, validCandidateInput()}, "")

	if result.Created != 2 || result.Rejected != 1 {
		t.Fatalf("summary = %+v", result)
	}
	if result.Items[1].Error == "" {
		t.Fatalf("expected storage error recorded on item 1")
	}
}

func TestImportCandidatesAppliesBatchSource(t *testing.T) {
	repo := &flakyDealRepoStub{}
	svc := newBulkImportService(repo, nil)

	result := svc.ImportCandidates(context.Background(), []DealCandidateInput{validCandidateInput()}, constants.DealSourceCJ)
	if result.Created != 1 {
		t.Fatalf("summary = %+v", result)
	}
	if repo.created[0].SourceAPI != constants.DealSourceCJ {
		t.Fatalf("source = %q, want cj", repo.created[0].SourceAPI)
	}
}

func TestProcessFileCSVWithAliases(t *testing.T) {
	repo := &flakyDealRepoStub{}
	uploadRepo := &uploadLogRepoStub{}
	svc := newBulkImportService(repo, uploadRepo)

	csvData := []byte(
		"product_name,description,list_price,price,store,node,product_url,main_image\n" +
			"Robot Vacuum,Great vacuum,100.00,40.00,Amazon,Electronics,https://example.com/d,https://example.com/i.jpg\n" +
			",,,,,,,\n" +
			"Broken Row,No prices,,,Amazon,Electronics,https://example.com/d2,https://example.com/i2.jpg\n")

	result, uploadLog, err := svc.ProcessFile(context.Background(), ProcessFileInput{
		Filename:  "amazon_feed.csv",
		Data:      csvData,
		SourceAPI: constants.DealSourceAmazon,
		AdminID:   7,
	})
	if err != nil {
		t.Fatalf("process file failed: %v", err)
	}
	if result.Total != 2 || result.Created != 1 || result.Rejected != 1 {
		t.Fatalf("summary = %+v", result)
	}
	if uploadLog == nil {
		t.Fatalf("expected upload log")
	}
	if uploadLog.Status != constants.UploadStatusPartial {
		t.Fatalf("status = %q, want partial", uploadLog.Status)
	}
	if uploadLog.SourceAPI != constants.DealSourceAmazon || uploadLog.AdminID != 7 {
		t.Fatalf("upload log = %+v", uploadLog)
	}
	if repo.created[0].Store != "Amazon" {
		t.Fatalf("store = %q", repo.created[0].Store)
	}
}

func TestProcessFileUnsupportedFormat(t *testing.T) {
	svc := newBulkImportService(&flakyDealRepoStub{}, nil)
	_, _, err := svc.ProcessFile(context.Background(), ProcessFileInput{
		Filename: "feed.xlsx",
		Data:     []byte("whatever"),
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestProcessFileEmpty(t *testing.T) {
	svc := newBulkImportService(&flakyDealRepoStub{}, nil)
	_, _, err := svc.ProcessFile(context.Background(), ProcessFileInput{Filename: "feed.csv"})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestProcessFileJSON(t *testing.T) {
	repo := &flakyDealRepoStub{}
	uploadRepo := &uploadLogRepoStub{}
	svc := newBulkImportService(repo, uploadRepo)

	jsonData := []byte(`[{
		"title": "Standing Desk",
		"description": "Electric standing desk",
		"original_price": "400.00",
		"sale_price": "200.00",
		"store": "Wayfair",
		"category": "Furniture",
		"affiliate_url": "https://example.com/desk",
		"image_url": "https://example.com/desk.jpg"
	}]`)

	result, uploadLog, err := svc.ProcessFile(context.Background(), ProcessFileInput{
		Filename: "deals.json",
		Data:     jsonData,
	})
	if err != nil {
		t.Fatalf("process file failed: %v", err)
	}
	if result.Created != 1 || result.Rejected != 0 {
		t.Fatalf("summary = %+v", result)
	}
	if uploadLog.Status != constants.UploadStatusCompleted {
		t.Fatalf("status = %q, want completed", uploadLog.Status)
	}
	if repo.created[0].SourceAPI != constants.DealSourceBulkImport {
		t.Fatalf("source = %q, want bulk_import default", repo.created[0].SourceAPI)
	}
}
