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

type ingestDealRepoStub struct {
	repository.DealRepository
	created   []*models.Deal
	createErr error
}

func (s *ingestDealRepoStub) Create(deal *models.Deal) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, deal)
	return nil
}

type scorerStub struct {
	verdict aiscore.Verdict
	calls   int
}

func (s *scorerStub) Score(_ context.Context, _ aiscore.Candidate) aiscore.Verdict {
	s.calls++
	return s.verdict
}

func newIngestService(repo *ingestDealRepoStub, scorer aiscore.Scorer) *IngestService {
	return NewIngestService(&config.Config{}, repo, scorer)
}

func TestSubmitStructuralErrorsSkipScoring(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{IsValid: true, Score: 9, DealType: constants.DealTypeTop}}
	svc := newIngestService(repo, scorer)

	outcome, err := svc.Submit(context.Background(), DealCandidateInput{Title: "only a title"})
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if outcome.Created {
		t.Fatalf("expected rejection for structural errors")
	}
	if len(outcome.Reasons) == 0 {
		t.Fatalf("expected structural error reasons")
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer called %d times, want 0", scorer.calls)
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing should be persisted on structural rejection")
	}
}

func TestSubmitInvalidVerdictNotPersisted(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{
		IsValid:  false,
		Score:    2,
		DealType: constants.DealTypeLatest,
		Reasons:  []string{"unrealistic pricing"},
	}}
	svc := newIngestService(repo, scorer)

	outcome, err := svc.Submit(context.Background(), validCandidateInput())
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if outcome.Created || outcome.Deal != nil {
		t.Fatalf("invalid verdict must not persist, got %+v", outcome)
	}
	if len(outcome.Reasons) != 1 || outcome.Reasons[0] != "unrealistic pricing" {
		t.Fatalf("reasons = %v", outcome.Reasons)
	}
	if len(repo.created) != 0 {
		t.Fatalf("repository must stay empty")
	}
}

func TestSubmitAutoPublishThreshold(t *testing.T) {
	cases := []struct {
		score         float64
		wantPublished bool
	}{
		{score: 8.5, wantPublished: true},
		{score: 8.4999, wantPublished: false},
		{score: 8.49, wantPublished: false},
		{score: 9.6, wantPublished: true},
		{score: 5, wantPublished: false},
	}

	for _, tc := range cases {
		repo := &ingestDealRepoStub{}
		scorer := &scorerStub{verdict: aiscore.Verdict{
			IsValid:  true,
			Score:    tc.score,
			DealType: constants.DealTypeHot,
		}}
		svc := newIngestService(repo, scorer)

		outcome, err := svc.Submit(context.Background(), validCandidateInput())
		if err != nil {
			t.Fatalf("score %v: submit returned error: %v", tc.score, err)
		}
		if !outcome.Created {
			t.Fatalf("score %v: expected created", tc.score)
		}
		if outcome.Published != tc.wantPublished {
			t.Fatalf("score %v: published = %v, want %v", tc.score, outcome.Published, tc.wantPublished)
		}
		deal := outcome.Deal
		if !deal.IsActive {
			t.Fatalf("score %v: deal must stay active, got active=%v", tc.score, deal.IsActive)
		}
		if deal.IsAIApproved != tc.wantPublished {
			t.Fatalf("score %v: approved = %v, want %v", tc.score, deal.IsAIApproved, tc.wantPublished)
		}
	}
}

func TestSubmitScorerOverrides(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{
		IsValid:        true,
		Score:          9,
		Category:       "Home",
		DealType:       constants.DealTypeTop,
		SuggestedTitle: "Robot Vacuum X200 — 60% Off Today",
		Reasons:        []string{"steep discount"},
	}}
	svc := newIngestService(repo, scorer)

	input := validCandidateInput()
	outcome, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	deal := outcome.Deal
	if deal.Category != "Home" {
		t.Fatalf("category = %q, want scorer override Home", deal.Category)
	}
	if deal.Title != "Robot Vacuum X200 — 60% Off Today" {
		t.Fatalf("title = %q, want suggested title", deal.Title)
	}
}

func TestSubmitEmptySuggestedTitleKeepsOriginal(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{
		IsValid:  true,
		Score:    6,
		DealType: constants.DealTypeHot,
	}}
	svc := newIngestService(repo, scorer)

	input := validCandidateInput()
	outcome, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if outcome.Deal.Title != input.Title {
		t.Fatalf("title = %q, want original %q", outcome.Deal.Title, input.Title)
	}
	if outcome.Deal.Category != input.Category {
		t.Fatalf("category = %q, want original %q", outcome.Deal.Category, input.Category)
	}
}

func TestSubmitStorageErrorSurfaced(t *testing.T) {
	storageErr := errors.New("disk full")
	repo := &ingestDealRepoStub{createErr: storageErr}
	scorer := &scorerStub{verdict: aiscore.Verdict{IsValid: true, Score: 9, DealType: constants.DealTypeTop}}
	svc := newIngestService(repo, scorer)

	_, err := svc.Submit(context.Background(), validCandidateInput())
	if !errors.Is(err, storageErr) {
		t.Fatalf("err = %v, want storage error surfaced", err)
	}
}

func TestSubmitAssignsUniqueIDs(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{IsValid: true, Score: 9, DealType: constants.DealTypeTop}}
	svc := newIngestService(repo, scorer)

	first, err := svc.Submit(context.Background(), validCandidateInput())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), validCandidateInput())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.Deal.ID == "" || first.Deal.ID == second.Deal.ID {
		t.Fatalf("ids must be unique and non-empty: %q vs %q", first.Deal.ID, second.Deal.ID)
	}
}

func TestSubmitDefaultSourceIsManual(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{IsValid: true, Score: 9, DealType: constants.DealTypeTop}}
	svc := newIngestService(repo, scorer)

	outcome, err := svc.Submit(context.Background(), validCandidateInput())
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if outcome.Deal.SourceAPI != constants.DealSourceManual {
		t.Fatalf("source = %q, want manual default", outcome.Deal.SourceAPI)
	}
}

// 场景回归：100 -> 40，评分器归类 Home，top 档，高分直接上架
func TestSubmitHighScoreScenario(t *testing.T) {
	repo := &ingestDealRepoStub{}
	scorer := &scorerStub{verdict: aiscore.Verdict{
		IsValid:  true,
		Score:    8.7,
		Category: "Home",
		DealType: constants.DealTypeTop,
		Reasons:  []string{"steep discount", "trusted store"},
	}}
	svc := newIngestService(repo, scorer)

	input := validCandidateInput()
	outcome, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	deal := outcome.Deal
	if deal.DiscountPercentage != 60 {
		t.Fatalf("discount = %d, want 60", deal.DiscountPercentage)
	}
	if deal.Category != "Home" {
		t.Fatalf("category = %q, want Home", deal.Category)
	}
	if deal.DealType != constants.DealTypeTop {
		t.Fatalf("deal type = %q, want top", deal.DealType)
	}
	if !deal.IsActive || !deal.IsAIApproved {
		t.Fatalf("expected published deal, got active=%v approved=%v", deal.IsActive, deal.IsAIApproved)
	}
}
