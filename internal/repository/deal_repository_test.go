package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDealRepositoryTest(t *testing.T) (*GormDealRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Deal{}); err != nil {
		t.Fatalf("migrate deal model failed: %v", err)
	}
	return NewDealRepository(db), db
}

func seedDeal(t *testing.T, repo *GormDealRepository, mutate func(*models.Deal)) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:                 uuid.NewString(),
		Title:              "Wireless Headphones",
		Description:        "Over-ear, noise cancelling",
		OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		DiscountPercentage: 40,
		Store:              "Amazon",
		Category:           "Electronics",
		AffiliateURL:       "https://store.example.com/item?aff=ds",
		DealType:           constants.DealTypeLatest,
		IsActive:           true,
		IsAIApproved:       true,
		SourceAPI:          constants.DealSourceManual,
	}
	if mutate != nil {
		mutate(deal)
	}
	if err := repo.Create(deal); err != nil {
		t.Fatalf("create deal failed: %v", err)
	}
	return deal
}

func TestDealListPendingFilter(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)

	seedDeal(t, repo, nil)
	pending := seedDeal(t, repo, func(d *models.Deal) {
		d.Title = "Pending Vacuum"
		d.IsAIApproved = false
	})
	seedDeal(t, repo, func(d *models.Deal) {
		d.Title = "Rejected Vacuum"
		d.IsActive = false
		d.IsAIApproved = false
	})

	rows, total, err := repo.List(DealListFilter{Page: 1, OnlyPending: true})
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("pending want 1 got total=%d len=%d", total, len(rows))
	}
	if rows[0].ID != pending.ID {
		t.Fatalf("pending row want %s got %s", pending.ID, rows[0].ID)
	}
}

func TestDealListTopOrdersByPopularity(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)

	seedDeal(t, repo, func(d *models.Deal) {
		d.Title = "Low Popularity"
		d.DealType = constants.DealTypeTop
		d.Popularity = 5
	})
	leader := seedDeal(t, repo, func(d *models.Deal) {
		d.Title = "High Popularity"
		d.DealType = constants.DealTypeTop
		d.Popularity = 50
	})

	rows, _, err := repo.List(DealListFilter{Page: 1, DealType: constants.DealTypeTop})
	if err != nil {
		t.Fatalf("list top failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != leader.ID {
		t.Fatalf("top list should lead with highest popularity, got %+v", rows)
	}
}

func TestDealListSearchMatchesTitleAndStore(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)

	seedDeal(t, repo, func(d *models.Deal) { d.Title = "Robot Vacuum X200" })
	seedDeal(t, repo, func(d *models.Deal) {
		d.Title = "Cookware Set"
		d.Store = "Walmart"
	})

	_, total, err := repo.List(DealListFilter{Page: 1, Search: "Vacuum"})
	if err != nil {
		t.Fatalf("search by title failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("title search want 1 got %d", total)
	}

	_, total, err = repo.List(DealListFilter{Page: 1, Search: "Walmart"})
	if err != nil {
		t.Fatalf("search by store failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("store search want 1 got %d", total)
	}
}

func TestIncrementClickAppliesPopularityWeight(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)
	deal := seedDeal(t, repo, nil)

	affected, err := repo.IncrementClick(deal.ID)
	if err != nil || affected != 1 {
		t.Fatalf("increment click want affected=1 got affected=%d err=%v", affected, err)
	}
	affected, err = repo.IncrementShare(deal.ID)
	if err != nil || affected != 1 {
		t.Fatalf("increment share want affected=1 got affected=%d err=%v", affected, err)
	}

	loaded, err := repo.GetByID(deal.ID)
	if err != nil {
		t.Fatalf("get deal failed: %v", err)
	}
	if loaded.ClickCount != 1 || loaded.ShareCount != 1 {
		t.Fatalf("counters want 1/1 got %d/%d", loaded.ClickCount, loaded.ShareCount)
	}
	wantPopularity := constants.PopularityWeightClick + constants.PopularityWeightShare
	if loaded.Popularity != wantPopularity {
		t.Fatalf("popularity want %d got %d", wantPopularity, loaded.Popularity)
	}
}

func TestIncrementClickSkipsUnpublishedDeal(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)
	inactive := seedDeal(t, repo, func(d *models.Deal) { d.IsActive = false })
	pending := seedDeal(t, repo, func(d *models.Deal) { d.IsAIApproved = false })

	for _, id := range []string{inactive.ID, pending.ID} {
		affected, err := repo.IncrementClick(id)
		if err != nil {
			t.Fatalf("increment click failed: %v", err)
		}
		if affected != 0 {
			t.Fatalf("unpublished deal must not count clicks, affected=%d", affected)
		}
	}
}

func TestListActiveAfterIDWalksCursor(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)

	for i := 0; i < 3; i++ {
		seedDeal(t, repo, nil)
	}
	seedDeal(t, repo, func(d *models.Deal) { d.IsActive = false })

	first, err := repo.ListActiveAfterID("", 2)
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first batch len want 2 got %d", len(first))
	}

	second, err := repo.ListActiveAfterID(first[len(first)-1].ID, 2)
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second batch len want 1 got %d", len(second))
	}
	if second[0].ID <= first[len(first)-1].ID {
		t.Fatalf("cursor must advance: %s after %s", second[0].ID, first[len(first)-1].ID)
	}
}

func TestRecomputePopularity(t *testing.T) {
	repo, _ := setupDealRepositoryTest(t)
	deal := seedDeal(t, repo, func(d *models.Deal) {
		d.ClickCount = 10
		d.ShareCount = 3
		d.Popularity = 999
	})

	if _, err := repo.RecomputePopularity(); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	loaded, err := repo.GetByID(deal.ID)
	if err != nil {
		t.Fatalf("get deal failed: %v", err)
	}
	want := 10*constants.PopularityWeightClick + 3*constants.PopularityWeightShare
	if loaded.Popularity != want {
		t.Fatalf("popularity want %d got %d", want, loaded.Popularity)
	}
}

func TestDeleteInactiveBefore(t *testing.T) {
	repo, db := setupDealRepositoryTest(t)

	stale := seedDeal(t, repo, func(d *models.Deal) {
		d.IsActive = false
		d.IsAIApproved = false
	})
	keep := seedDeal(t, repo, nil)

	cutoff := time.Now().Add(-time.Hour)
	if err := db.Model(&models.Deal{}).Where("id = ?", stale.ID).
		Update("updated_at", cutoff.Add(-24*time.Hour)).Error; err != nil {
		t.Fatalf("backdate stale deal failed: %v", err)
	}

	removed, err := repo.DeleteInactiveBefore(cutoff)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed want 1 got %d", removed)
	}
	if loaded, err := repo.GetByID(keep.ID); err != nil || loaded == nil {
		t.Fatalf("active deal must survive cleanup: %v", err)
	}
}
