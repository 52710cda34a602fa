package main

import (
	"fmt"
	"time"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	now := time.Now()
	weekLater := now.AddDate(0, 0, 7)
	monthLater := now.AddDate(0, 1, 0)

	// 演示优惠数据
	deals := []models.Deal{
		{
			Title:              "Wireless Noise-Cancelling Headphones",
			Description:        "Over-ear Bluetooth headphones with 30h battery life and active noise cancellation.",
			OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromFloat(89.99)),
			DiscountPercentage: 55,
			Store:              "Amazon",
			Category:           "Electronics",
			AffiliateURL:       "https://www.amazon.com/dp/B0DEMO001?tag=dealsphere-20",
			ImageURL:           "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800",
			AIScore:            8.6,
			AIReasons:          models.StringArray([]string{"steep discount on a popular brand", "strong review history"}),
			DealType:           constants.DealTypeTop,
			IsActive:           true,
			IsAIApproved:       true,
			SourceAPI:          constants.DealSourceAmazon,
			Popularity:         420,
			ClickCount:         380,
			ShareCount:         8,
			ExpiresAt:          &weekLater,
		},
		{
			Title:              "Robot Vacuum with Self-Empty Base",
			Description:        "LiDAR navigation, app control, 60-day self-empty base.",
			OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(549.00)),
			SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromFloat(299.00)),
			DiscountPercentage: 46,
			Store:              "Best Buy",
			Category:           "Home",
			AffiliateURL:       "https://www.bestbuy.com/site/demo-robot-vacuum?aff=dealsphere",
			ImageURL:           "https://images.unsplash.com/photo-1558317374-067fb5f30001?w=800",
			AIScore:            7.9,
			AIReasons:          models.StringArray([]string{"all-time low price"}),
			DealType:           constants.DealTypeHot,
			IsActive:           true,
			IsAIApproved:       true,
			SourceAPI:          constants.DealSourceCJ,
			Popularity:         180,
			ClickCount:         165,
			ShareCount:         3,
			ExpiresAt:          &monthLater,
		},
		{
			Title:              "Stainless Steel Cookware Set 12-Piece",
			Description:        "Tri-ply stainless steel pots and pans, dishwasher safe.",
			OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(249.99)),
			SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromFloat(159.99)),
			DiscountPercentage: 36,
			Store:              "Walmart",
			Category:           "Kitchen",
			AffiliateURL:       "https://www.walmart.com/ip/demo-cookware?aff=dealsphere",
			ImageURL:           "https://images.unsplash.com/photo-1584990347449-a2d4c2c044c7?w=800",
			AIScore:            6.8,
			DealType:           constants.DealTypeLatest,
			IsActive:           true,
			IsAIApproved:       true,
			SourceAPI:          constants.DealSourceShareASale,
			Popularity:         45,
			ClickCount:         40,
			ShareCount:         1,
		},
		{
			Title:              "4K Streaming Stick with Voice Remote",
			Description:        "Stream in 4K HDR, voice search remote included.",
			OriginalPrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			SalePrice:          models.NewMoneyFromDecimal(decimal.NewFromFloat(24.99)),
			DiscountPercentage: 50,
			Store:              "Amazon",
			Category:           "Electronics",
			AffiliateURL:       "https://www.amazon.com/dp/B0DEMO004?tag=dealsphere-20",
			ImageURL:           "https://images.unsplash.com/photo-1593784991095-a205069470b6?w=800",
			AIScore:            5.4,
			AIReasons:          models.StringArray([]string{"pending manual review: frequent price fluctuation"}),
			DealType:           constants.DealTypeLatest,
			IsActive:           true,
			IsAIApproved:       false,
			SourceAPI:          constants.DealSourceManual,
			CouponCode:         "STREAM50",
			CouponRequired:     true,
			ExpiresAt:          &weekLater,
		},
	}

	for _, deal := range deals {
		var existing models.Deal
		if err := models.DB.Where("title = ? AND store = ?", deal.Title, deal.Store).First(&existing).Error; err != nil {
			deal.ID = uuid.NewString()
			if err := models.DB.Create(&deal).Error; err != nil {
				stdLog.Printf("Failed to create deal %q: %v", deal.Title, err)
			} else {
				stdLog.Printf("Created deal: %s", deal.Title)
			}
		} else {
			stdLog.Printf("Deal already exists: %s", deal.Title)
		}
	}

	// 首页主视觉 Banner
	heroStart := now.Add(-24 * time.Hour)
	heroEnd := now.AddDate(0, 2, 0)
	saleStart := now.Add(-2 * time.Hour)
	saleEnd := now.AddDate(0, 0, 7)

	banners := []models.Banner{
		{
			Name:         "首页主视觉-今日精选",
			Position:     constants.BannerPositionHomeHero,
			Title:        "Today's Top Deals",
			Subtitle:     "Hand-picked discounts refreshed every hour",
			Image:        "https://images.unsplash.com/photo-1607082348824-0a96f2a4b9da?auto=format&fit=crop&w=1920&q=80",
			MobileImage:  "https://images.unsplash.com/photo-1607082348824-0a96f2a4b9da?auto=format&fit=crop&w=900&q=80",
			LinkType:     constants.BannerLinkTypeInternal,
			LinkValue:    "/deals?deal_type=top",
			OpenInNewTab: false,
			IsActive:     true,
			StartAt:      &heroStart,
			EndAt:        &heroEnd,
			SortOrder:    300,
		},
		{
			Name:         "首页主视觉-限时闪购",
			Position:     constants.BannerPositionHomeHero,
			Title:        "72-Hour Flash Sale",
			Subtitle:     "Electronics and home picks up to 60% off",
			Image:        "https://images.unsplash.com/photo-1607082349566-187342175e2f?auto=format&fit=crop&w=1920&q=80",
			MobileImage:  "https://images.unsplash.com/photo-1607082349566-187342175e2f?auto=format&fit=crop&w=900&q=80",
			LinkType:     constants.BannerLinkTypeInternal,
			LinkValue:    "/deals?deal_type=hot",
			OpenInNewTab: false,
			IsActive:     true,
			StartAt:      &saleStart,
			EndAt:        &saleEnd,
			SortOrder:    200,
		},
	}

	for _, banner := range banners {
		var existing models.Banner
		if err := models.DB.Where("name = ? AND position = ?", banner.Name, banner.Position).First(&existing).Error; err != nil {
			if err := models.DB.Select("*").Create(&banner).Error; err != nil {
				stdLog.Printf("Failed to create banner %s: %v", banner.Name, err)
			} else {
				stdLog.Printf("Created banner: %s", banner.Name)
			}
		} else {
			existing.Title = banner.Title
			existing.Subtitle = banner.Subtitle
			existing.Image = banner.Image
			existing.MobileImage = banner.MobileImage
			existing.LinkType = banner.LinkType
			existing.LinkValue = banner.LinkValue
			existing.OpenInNewTab = banner.OpenInNewTab
			existing.IsActive = banner.IsActive
			existing.StartAt = banner.StartAt
			existing.EndAt = banner.EndAt
			existing.SortOrder = banner.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update banner %s: %v", banner.Name, err)
			} else {
				stdLog.Printf("Updated banner: %s", banner.Name)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 4 Deals (3 published + 1 pending review)")
	fmt.Println("- 2 Banners (home_hero)")
	fmt.Println("- Default admin account")
}
