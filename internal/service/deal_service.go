package service

import (
	"context"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/cache"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"
)

const catalogCacheTTL = 10 * time.Minute

// DealService 优惠查询、审核与互动服务
type DealService struct {
	dealRepo  repository.DealRepository
	clickRepo repository.DealClickRepository
	shareRepo repository.SocialShareRepository
}

// NewDealService 创建优惠服务
func NewDealService(
	dealRepo repository.DealRepository,
	clickRepo repository.DealClickRepository,
	shareRepo repository.SocialShareRepository,
) *DealService {
	return &DealService{
		dealRepo:  dealRepo,
		clickRepo: clickRepo,
		shareRepo: shareRepo,
	}
}

// PublicDealListInput 公开列表查询参数
type PublicDealListInput struct {
	Page     int
	PageSize int
	DealType string
	Category string
	Store    string
	Search   string
}

// ListPublic 公开优惠列表（仅上架且已通过审核）
func (s *DealService) ListPublic(input PublicDealListInput) ([]models.Deal, int64, error) {
	active := true
	approved := true
	return s.dealRepo.List(repository.DealListFilter{
		Page:       input.Page,
		PageSize:   input.PageSize,
		DealType:   strings.TrimSpace(input.DealType),
		Category:   strings.TrimSpace(input.Category),
		Store:      strings.TrimSpace(input.Store),
		Search:     input.Search,
		IsActive:   &active,
		IsApproved: &approved,
	})
}

// List 管理端优惠列表
func (s *DealService) List(filter repository.DealListFilter) ([]models.Deal, int64, error) {
	return s.dealRepo.List(filter)
}

// ListPending 待审核优惠列表
func (s *DealService) ListPending(page, pageSize int) ([]models.Deal, int64, error) {
	return s.dealRepo.List(repository.DealListFilter{
		Page:        page,
		PageSize:    pageSize,
		OnlyPending: true,
	})
}

// GetByID 获取优惠详情
func (s *DealService) GetByID(id string) (*models.Deal, error) {
	deal, err := s.dealRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrNotFound
	}
	return deal, nil
}

// GetPublicByID 获取公开优惠详情（仅上架且已通过审核）
func (s *DealService) GetPublicByID(id string) (*models.Deal, error) {
	deal, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !deal.IsActive || !deal.IsAIApproved {
		return nil, ErrNotFound
	}
	return deal, nil
}

// DealUpdateInput 管理端更新参数
type DealUpdateInput struct {
	Title          *string
	Description    *string
	OriginalPrice  *string
	SalePrice      *string
	Store          *string
	Category       *string
	AffiliateURL   *string
	ImageURL       *string
	DealType       *string
	CouponCode     *string
	CouponRequired *bool
	ExpiresAt      *time.Time
}

// Update 管理端更新优惠
// 价格变更会重算折扣；分级只接受约定取值。
func (s *DealService) Update(ctx context.Context, id string, input DealUpdateInput) (*models.Deal, error) {
	deal, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		deal.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		deal.Description = strings.TrimSpace(*input.Description)
	}
	if input.Store != nil && strings.TrimSpace(*input.Store) != "" {
		deal.Store = strings.TrimSpace(*input.Store)
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		deal.Category = strings.TrimSpace(*input.Category)
	}
	if input.AffiliateURL != nil {
		if !validHTTPURL(*input.AffiliateURL) {
			return nil, ErrInvalidURL
		}
		deal.AffiliateURL = strings.TrimSpace(*input.AffiliateURL)
	}
	if input.ImageURL != nil {
		if !validHTTPURL(*input.ImageURL) {
			return nil, ErrInvalidURL
		}
		deal.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.DealType != nil {
		dealType := strings.TrimSpace(*input.DealType)
		valid := false
		for _, t := range constants.DealTypes {
			if t == dealType {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ErrInvalidDealType
		}
		deal.DealType = dealType
	}
	if input.CouponCode != nil {
		deal.CouponCode = strings.TrimSpace(*input.CouponCode)
	}
	if input.CouponRequired != nil {
		deal.CouponRequired = *input.CouponRequired
	}
	if input.ExpiresAt != nil {
		deal.ExpiresAt = input.ExpiresAt
	}

	if input.OriginalPrice != nil || input.SalePrice != nil {
		originalRaw := deal.OriginalPrice.String()
		saleRaw := deal.SalePrice.String()
		if input.OriginalPrice != nil {
			originalRaw = *input.OriginalPrice
		}
		if input.SalePrice != nil {
			saleRaw = *input.SalePrice
		}
		originalPrice, originalOK := parsePositivePrice(originalRaw)
		salePrice, saleOK := parsePositivePrice(saleRaw)
		if !originalOK || !saleOK || salePrice.GreaterThanOrEqual(originalPrice) {
			return nil, ErrInvalidPrice
		}
		deal.OriginalPrice = models.NewMoneyFromDecimal(originalPrice)
		deal.SalePrice = models.NewMoneyFromDecimal(salePrice)
		deal.DiscountPercentage = computeDiscountPercentage(originalPrice, salePrice)
	}

	if err := s.dealRepo.Update(deal); err != nil {
		return nil, err
	}
	s.invalidateCatalogCache(ctx)
	return deal, nil
}

// Approve 审核通过并上架
func (s *DealService) Approve(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	deal.IsActive = true
	deal.IsAIApproved = true
	if err := s.dealRepo.Update(deal); err != nil {
		return nil, err
	}
	s.invalidateCatalogCache(ctx)
	logger.Infow("deal_approved", "deal_id", deal.ID)
	return deal, nil
}

// Reject 驳回并下架，驳回原因追加到理由列表
func (s *DealService) Reject(ctx context.Context, id, reason string) (*models.Deal, error) {
	deal, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	deal.IsActive = false
	deal.IsAIApproved = false
	if reason = strings.TrimSpace(reason); reason != "" {
		deal.AIReasons = append(deal.AIReasons, "rejected: "+reason)
	}
	if err := s.dealRepo.Update(deal); err != nil {
		return nil, err
	}
	s.invalidateCatalogCache(ctx)
	logger.Infow("deal_rejected", "deal_id", deal.ID, "reason", reason)
	return deal, nil
}

// Deactivate 下架优惠（软删除走 Delete）
func (s *DealService) Deactivate(ctx context.Context, id string) error {
	affected, err := s.dealRepo.Deactivate(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.invalidateCatalogCache(ctx)
	return nil
}

// ClickMeta 点击上下文
type ClickMeta struct {
	ClientIP  string
	UserAgent string
	Referer   string
}

// TrackClick 记录点击并累加点击数与热度
func (s *DealService) TrackClick(ctx context.Context, id string, meta ClickMeta) error {
	affected, err := s.dealRepo.IncrementClick(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	click := &models.DealClick{
		DealID:    id,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
	}
	if err := s.clickRepo.Create(click); err != nil {
		// 计数已生效，流水写入失败只记录日志
		logger.Warnw("deal_click_log_failed", "deal_id", id, "error", err)
	}
	return nil
}

// TrackShare 记录分享并累加分享数与热度
func (s *DealService) TrackShare(ctx context.Context, id, platform, clientIP string) error {
	platform = strings.ToLower(strings.TrimSpace(platform))
	switch platform {
	case constants.SharePlatformTwitter,
		constants.SharePlatformFacebook,
		constants.SharePlatformTelegram,
		constants.SharePlatformWhatsApp,
		constants.SharePlatformOther:
	default:
		return ErrInvalidPlatform
	}

	affected, err := s.dealRepo.IncrementShare(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	share := &models.SocialShare{
		DealID:   id,
		Platform: platform,
		ClientIP: clientIP,
	}
	if err := s.shareRepo.Create(share); err != nil {
		logger.Warnw("deal_share_log_failed", "deal_id", id, "error", err)
	}
	return nil
}

// Categories 上架优惠的分类目录（Redis 缓存）
func (s *DealService) Categories(ctx context.Context) ([]string, error) {
	return s.cachedCatalog(ctx, constants.CacheKeyCategories, s.dealRepo.DistinctCategories)
}

// Stores 上架优惠的商店目录（Redis 缓存）
func (s *DealService) Stores(ctx context.Context) ([]string, error) {
	return s.cachedCatalog(ctx, constants.CacheKeyStores, s.dealRepo.DistinctStores)
}

func (s *DealService) cachedCatalog(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	if cache.Enabled() {
		var cached []string
		if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	values, err := load()
	if err != nil {
		return nil, err
	}

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, key, values, catalogCacheTTL); err != nil {
			logger.Warnw("catalog_cache_set_failed", "key", key, "error", err)
		}
	}
	return values, nil
}

func (s *DealService) invalidateCatalogCache(ctx context.Context) {
	if !cache.Enabled() {
		return
	}
	_ = cache.Del(ctx, constants.CacheKeyCategories)
	_ = cache.Del(ctx, constants.CacheKeyStores)
}
