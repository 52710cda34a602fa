//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.DealClick{},
		&models.SocialShare{},
		&models.UploadLog{},
		&models.Deal{},
		&models.Banner{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Deal{},
		&models.DealClick{},
		&models.SocialShare{},
		&models.UploadLog{},
		&models.Banner{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func newPostgresDeal(title, store string) *models.Deal {
	return &models.Deal{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        "integration test deal",
		OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		DiscountPercentage: 40,
		Store:              store,
		Category:           "Electronics",
		AffiliateURL:       "https://store.example.com/item?aff=ds",
		DealType:           constants.DealTypeLatest,
		IsActive:           true,
		IsAIApproved:       true,
		SourceAPI:          constants.DealSourceManual,
	}
}

// TestPostgresCaseInsensitiveSearchRepositories 校验 ILIKE 搜索在 PostgreSQL 下不区分大小写。
func TestPostgresCaseInsensitiveSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	dealRepo := NewDealRepository(db)
	deal := newPostgresDeal("Wireless Noise-Cancelling Headphones", "Amazon")
	if err := dealRepo.Create(deal); err != nil {
		t.Fatalf("create deal failed: %v", err)
	}

	dealRows, dealTotal, err := dealRepo.List(DealListFilter{
		Page:   1,
		Search: "HEADPHONES",
	})
	if err != nil {
		t.Fatalf("deal list search failed: %v", err)
	}
	if dealTotal != 1 || len(dealRows) != 1 {
		t.Fatalf("deal list search want 1 got total=%d len=%d", dealTotal, len(dealRows))
	}

	dealRows, dealTotal, err = dealRepo.List(DealListFilter{
		Page:   1,
		Search: "amazon",
	})
	if err != nil {
		t.Fatalf("deal list store search failed: %v", err)
	}
	if dealTotal != 1 || len(dealRows) != 1 {
		t.Fatalf("deal list store search want 1 got total=%d len=%d", dealTotal, len(dealRows))
	}

	bannerRepo := NewBannerRepository(db)
	banner := &models.Banner{
		Name:     "pg-home-banner",
		Position: constants.BannerPositionHomeHero,
		Title:    "Spring Flash Sale",
		Image:    "/banner.png",
		LinkType: constants.BannerLinkTypeNone,
		IsActive: true,
	}
	if err := bannerRepo.Create(banner); err != nil {
		t.Fatalf("create banner failed: %v", err)
	}

	bannerRows, bannerTotal, err := bannerRepo.List(BannerListFilter{
		Page:   1,
		Search: "flash sale",
	})
	if err != nil {
		t.Fatalf("banner list search failed: %v", err)
	}
	if bannerTotal != 1 || len(bannerRows) != 1 {
		t.Fatalf("banner list search want 1 got total=%d len=%d", bannerTotal, len(bannerRows))
	}
}

func TestPostgresDealCounters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	dealRepo := NewDealRepository(db)

	deal := newPostgresDeal("Robot Vacuum", "Best Buy")
	if err := dealRepo.Create(deal); err != nil {
		t.Fatalf("create deal failed: %v", err)
	}

	if affected, err := dealRepo.IncrementClick(deal.ID); err != nil || affected != 1 {
		t.Fatalf("increment click want affected=1 got affected=%d err=%v", affected, err)
	}
	if affected, err := dealRepo.IncrementShare(deal.ID); err != nil || affected != 1 {
		t.Fatalf("increment share want affected=1 got affected=%d err=%v", affected, err)
	}

	loaded, err := dealRepo.GetByID(deal.ID)
	if err != nil {
		t.Fatalf("get deal failed: %v", err)
	}
	if loaded.ClickCount != 1 || loaded.ShareCount != 1 {
		t.Fatalf("counters want 1/1 got %d/%d", loaded.ClickCount, loaded.ShareCount)
	}
}

func TestPostgresDashboardQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	deal := newPostgresDeal("Streaming Stick", "Amazon")
	deal.DealType = constants.DealTypeTop
	deal.ClickCount = 12
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("create deal failed: %v", err)
	}

	if err := db.Create(&models.DealClick{DealID: deal.ID, ClientIP: "10.0.0.1", CreatedAt: now}).Error; err != nil {
		t.Fatalf("create click failed: %v", err)
	}
	if err := db.Create(&models.SocialShare{DealID: deal.ID, Platform: constants.SharePlatformTwitter, CreatedAt: now}).Error; err != nil {
		t.Fatalf("create share failed: %v", err)
	}

	startAt := now.Add(-time.Hour)
	endAt := now.Add(time.Hour)

	overview, err := repo.GetOverview(startAt, endAt)
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if overview.DealsTotal != 1 || overview.ClicksTotal != 1 || overview.SharesTotal != 1 {
		t.Fatalf("overview want 1/1/1 got %d/%d/%d", overview.DealsTotal, overview.ClicksTotal, overview.SharesTotal)
	}

	ingestTrends, err := repo.GetIngestTrends(startAt, endAt)
	if err != nil {
		t.Fatalf("get ingest trends failed: %v", err)
	}
	if len(ingestTrends) == 0 {
		t.Fatalf("ingest trends should not be empty")
	}
	if strings.TrimSpace(ingestTrends[0].Day) == "" {
		t.Fatalf("ingest trend day should not be empty")
	}

	engagementTrends, err := repo.GetEngagementTrends(startAt, endAt)
	if err != nil {
		t.Fatalf("get engagement trends failed: %v", err)
	}
	if len(engagementTrends) == 0 {
		t.Fatalf("engagement trends should not be empty")
	}
	if strings.TrimSpace(engagementTrends[0].Day) == "" {
		t.Fatalf("engagement trend day should not be empty")
	}
}
