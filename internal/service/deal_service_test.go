package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"

	"github.com/shopspring/decimal"
)

type dealRepoStub struct {
	repository.DealRepository
	deals          map[string]*models.Deal
	lastFilter     repository.DealListFilter
	updated        *models.Deal
	updateErr      error
	clickAffected  int64
	shareAffected  int64
	deactivated    int64
	categories     []string
	categoryCalls  int
	incrementedIDs []string
}

func (s *dealRepoStub) List(filter repository.DealListFilter) ([]models.Deal, int64, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *dealRepoStub) GetByID(id string) (*models.Deal, error) {
	if deal, ok := s.deals[id]; ok {
		return deal, nil
	}
	return nil, nil
}

func (s *dealRepoStub) Update(deal *models.Deal) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = deal
	return nil
}

func (s *dealRepoStub) Deactivate(id string) (int64, error) {
	return s.deactivated, nil
}

func (s *dealRepoStub) IncrementClick(id string) (int64, error) {
	s.incrementedIDs = append(s.incrementedIDs, id)
	return s.clickAffected, nil
}

func (s *dealRepoStub) IncrementShare(id string) (int64, error) {
	s.incrementedIDs = append(s.incrementedIDs, id)
	return s.shareAffected, nil
}

func (s *dealRepoStub) DistinctCategories() ([]string, error) {
	s.categoryCalls++
	return s.categories, nil
}

type dealClickRepoStub struct {
	repository.DealClickRepository
	created   []*models.DealClick
	createErr error
}

func (s *dealClickRepoStub) Create(click *models.DealClick) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, click)
	return nil
}

type socialShareRepoStub struct {
	repository.SocialShareRepository
	created []*models.SocialShare
}

func (s *socialShareRepoStub) Create(share *models.SocialShare) error {
	s.created = append(s.created, share)
	return nil
}

func newDealServiceForTest(dealRepo *dealRepoStub) (*DealService, *dealClickRepoStub, *socialShareRepoStub) {
	clickRepo := &dealClickRepoStub{}
	shareRepo := &socialShareRepoStub{}
	return NewDealService(dealRepo, clickRepo, shareRepo), clickRepo, shareRepo
}

func publishedDeal(id string) *models.Deal {
	return &models.Deal{
		ID:                 id,
		Title:              "Wireless Headphones",
		OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		DiscountPercentage: 40,
		Store:              "Amazon",
		Category:           "Electronics",
		AffiliateURL:       "https://amazon.com/dp/x",
		DealType:           constants.DealTypeTop,
		IsActive:           true,
		IsAIApproved:       true,
	}
}

func TestListPublicForcesPublishedFilter(t *testing.T) {
	repo := &dealRepoStub{}
	svc, _, _ := newDealServiceForTest(repo)

	if _, _, err := svc.ListPublic(PublicDealListInput{Page: 2, DealType: " top ", Search: "vacuum"}); err != nil {
		t.Fatalf("list public returned error: %v", err)
	}
	filter := repo.lastFilter
	if filter.IsActive == nil || !*filter.IsActive {
		t.Fatalf("public list must force is_active=true")
	}
	if filter.IsApproved == nil || !*filter.IsApproved {
		t.Fatalf("public list must force is_ai_approved=true")
	}
	if filter.DealType != "top" {
		t.Fatalf("deal type want trimmed top got %q", filter.DealType)
	}
}

func TestGetPublicByIDHidesUnpublished(t *testing.T) {
	hidden := publishedDeal("deal-1")
	hidden.IsActive = false
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": hidden}}
	svc, _, _ := newDealServiceForTest(repo)

	if _, err := svc.GetPublicByID("deal-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unpublished deal", err)
	}
	if _, err := svc.GetPublicByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for missing deal", err)
	}
}

func TestUpdateRecomputesDiscount(t *testing.T) {
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": publishedDeal("deal-1")}}
	svc, _, _ := newDealServiceForTest(repo)

	sale := "25.00"
	deal, err := svc.Update(context.Background(), "deal-1", DealUpdateInput{SalePrice: &sale})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if deal.DiscountPercentage != 75 {
		t.Fatalf("discount = %d, want 75", deal.DiscountPercentage)
	}
	if repo.updated == nil {
		t.Fatalf("update must persist the deal")
	}
}

func TestUpdateRejectsSaleAboveOriginal(t *testing.T) {
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": publishedDeal("deal-1")}}
	svc, _, _ := newDealServiceForTest(repo)

	sale := "150.00"
	if _, err := svc.Update(context.Background(), "deal-1", DealUpdateInput{SalePrice: &sale}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("err = %v, want ErrInvalidPrice", err)
	}
	if repo.updated != nil {
		t.Fatalf("invalid price must not persist")
	}
}

func TestUpdateValidatesDealTypeAndURL(t *testing.T) {
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": publishedDeal("deal-1")}}
	svc, _, _ := newDealServiceForTest(repo)

	badType := "featured"
	if _, err := svc.Update(context.Background(), "deal-1", DealUpdateInput{DealType: &badType}); !errors.Is(err, ErrInvalidDealType) {
		t.Fatalf("err = %v, want ErrInvalidDealType", err)
	}

	badURL := "ftp://example.com/deal"
	if _, err := svc.Update(context.Background(), "deal-1", DealUpdateInput{AffiliateURL: &badURL}); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err = %v, want ErrInvalidURL", err)
	}
}

func TestApproveSetsPublishedFlags(t *testing.T) {
	pending := publishedDeal("deal-1")
	pending.IsActive = false
	pending.IsAIApproved = false
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": pending}}
	svc, _, _ := newDealServiceForTest(repo)

	deal, err := svc.Approve(context.Background(), "deal-1")
	if err != nil {
		t.Fatalf("approve returned error: %v", err)
	}
	if !deal.IsActive || !deal.IsAIApproved {
		t.Fatalf("approve must publish, got active=%v approved=%v", deal.IsActive, deal.IsAIApproved)
	}
}

func TestRejectAppendsReason(t *testing.T) {
	repo := &dealRepoStub{deals: map[string]*models.Deal{"deal-1": publishedDeal("deal-1")}}
	svc, _, _ := newDealServiceForTest(repo)

	deal, err := svc.Reject(context.Background(), "deal-1", "price looks fake")
	if err != nil {
		t.Fatalf("reject returned error: %v", err)
	}
	if deal.IsActive || deal.IsAIApproved {
		t.Fatalf("reject must unpublish, got active=%v approved=%v", deal.IsActive, deal.IsAIApproved)
	}
	if len(deal.AIReasons) == 0 || deal.AIReasons[len(deal.AIReasons)-1] != "rejected: price looks fake" {
		t.Fatalf("reasons = %v, want rejection appended", deal.AIReasons)
	}
}

func TestDeactivateMissingDeal(t *testing.T) {
	repo := &dealRepoStub{deactivated: 0}
	svc, _, _ := newDealServiceForTest(repo)

	if err := svc.Deactivate(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTrackClickRecordsEvent(t *testing.T) {
	repo := &dealRepoStub{clickAffected: 1}
	svc, clickRepo, _ := newDealServiceForTest(repo)

	meta := ClickMeta{ClientIP: "1.2.3.4", UserAgent: "go-test", Referer: "https://dealsphere.example"}
	if err := svc.TrackClick(context.Background(), "deal-1", meta); err != nil {
		t.Fatalf("track click returned error: %v", err)
	}
	if len(clickRepo.created) != 1 {
		t.Fatalf("click rows want 1 got %d", len(clickRepo.created))
	}
	if clickRepo.created[0].ClientIP != "1.2.3.4" {
		t.Fatalf("client ip = %q", clickRepo.created[0].ClientIP)
	}
}

func TestTrackClickLogFailureNotFatal(t *testing.T) {
	repo := &dealRepoStub{clickAffected: 1}
	svc, clickRepo, _ := newDealServiceForTest(repo)
	clickRepo.createErr = errors.New("disk full")

	if err := svc.TrackClick(context.Background(), "deal-1", ClickMeta{}); err != nil {
		t.Fatalf("counter already applied, click log failure must not surface: %v", err)
	}
}

func TestTrackClickMissingDeal(t *testing.T) {
	repo := &dealRepoStub{clickAffected: 0}
	svc, _, _ := newDealServiceForTest(repo)

	if err := svc.TrackClick(context.Background(), "missing", ClickMeta{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTrackShareValidatesPlatform(t *testing.T) {
	repo := &dealRepoStub{shareAffected: 1}
	svc, _, shareRepo := newDealServiceForTest(repo)

	if err := svc.TrackShare(context.Background(), "deal-1", "myspace", "1.2.3.4"); !errors.Is(err, ErrInvalidPlatform) {
		t.Fatalf("err = %v, want ErrInvalidPlatform", err)
	}
	if len(repo.incrementedIDs) != 0 {
		t.Fatalf("invalid platform must not touch counters")
	}

	if err := svc.TrackShare(context.Background(), "deal-1", " Twitter ", "1.2.3.4"); err != nil {
		t.Fatalf("track share returned error: %v", err)
	}
	if len(shareRepo.created) != 1 || shareRepo.created[0].Platform != constants.SharePlatformTwitter {
		t.Fatalf("share rows = %+v, want normalized twitter platform", shareRepo.created)
	}
}

func TestCategoriesLoadsFromRepoWithoutCache(t *testing.T) {
	repo := &dealRepoStub{categories: []string{"Electronics", "Home"}}
	svc, _, _ := newDealServiceForTest(repo)

	values, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories returned error: %v", err)
	}
	if len(values) != 2 || values[0] != "Electronics" {
		t.Fatalf("categories = %v", values)
	}
	if repo.categoryCalls != 1 {
		t.Fatalf("repo calls want 1 got %d", repo.categoryCalls)
	}
}
