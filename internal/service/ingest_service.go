package service

import (
	"context"

	"github.com/dealsphere/dealsphere/internal/aiscore"
	"github.com/dealsphere/dealsphere/internal/cache"
	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"

	"github.com/google/uuid"
)

// IngestService 优惠接入流水线
// 流程：结构校验 -> AI 评分（失败自动降级）-> 入库（达到阈值直接上架，否则待审核）。
type IngestService struct {
	cfg      *config.Config
	dealRepo repository.DealRepository
	scorer   aiscore.Scorer
}

// NewIngestService 创建接入流水线
func NewIngestService(cfg *config.Config, dealRepo repository.DealRepository, scorer aiscore.Scorer) *IngestService {
	return &IngestService{
		cfg:      cfg,
		dealRepo: dealRepo,
		scorer:   scorer,
	}
}

// SubmitOutcome 单条候选的接入结果
// Created 为 false 时 Deal 为空，Reasons 给出驳回原因。
type SubmitOutcome struct {
	Deal      *models.Deal `json:"deal,omitempty"`
	Created   bool         `json:"created"`
	Published bool         `json:"published"`
	Reasons   []string     `json:"reasons,omitempty"`
}

// autoPublishScore 自动上架评分阈值
func (s *IngestService) autoPublishScore() float64 {
	if s.cfg != nil && s.cfg.Ingest.AutoPublishScore > 0 {
		return s.cfg.Ingest.AutoPublishScore
	}
	return constants.DefaultAutoPublishScore
}

// Submit 接入单条优惠候选
// 结构错误与评分驳回不产生 error；error 仅表示存储失败。
func (s *IngestService) Submit(ctx context.Context, input DealCandidateInput) (*SubmitOutcome, error) {
	candidate, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) > 0 {
		return &SubmitOutcome{Reasons: structuralErrors}, nil
	}

	verdict := s.scorer.Score(ctx, candidate.ScorerCandidate())
	if !verdict.IsValid {
		logger.Infow("deal_rejected_by_scorer",
			"title", candidate.Title,
			"score", verdict.Score,
			"fallback", verdict.Fallback,
		)
		return &SubmitOutcome{Reasons: verdict.Reasons}, nil
	}

	deal := s.buildDealEntity(candidate, verdict)
	if err := s.dealRepo.Create(deal); err != nil {
		return nil, err
	}

	s.invalidateCatalogCache(ctx)
	logger.Infow("deal_ingested",
		"deal_id", deal.ID,
		"score", deal.AIScore,
		"deal_type", deal.DealType,
		"published", deal.IsAIApproved,
		"source", deal.SourceAPI,
	)

	return &SubmitOutcome{
		Deal:      deal,
		Created:   true,
		Published: deal.IsAIApproved,
		Reasons:   verdict.Reasons,
	}, nil
}

// buildDealEntity 依据评分结论构建入库实体
func (s *IngestService) buildDealEntity(candidate *NormalizedCandidate, verdict aiscore.Verdict) *models.Deal {
	title := candidate.Title
	if verdict.SuggestedTitle != "" {
		title = verdict.SuggestedTitle
	}
	category := candidate.Category
	if verdict.Category != "" {
		category = verdict.Category
	}
	sourceAPI := candidate.SourceAPI
	if sourceAPI == "" {
		sourceAPI = constants.DealSourceManual
	}

	published := verdict.Score >= s.autoPublishScore()

	// 待审核保持上架标记，仅审核标记为假；下架只发生在驳回/下架操作。
	return &models.Deal{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        candidate.Description,
		OriginalPrice:      candidate.OriginalPrice,
		SalePrice:          candidate.SalePrice,
		DiscountPercentage: candidate.DiscountPercentage,
		Store:              candidate.Store,
		Category:           category,
		AffiliateURL:       candidate.AffiliateURL,
		ImageURL:           candidate.ImageURL,
		AIScore:            verdict.Score,
		AIReasons:          models.StringArray(verdict.Reasons),
		DealType:           verdict.DealType,
		IsActive:           true,
		IsAIApproved:       published,
		SourceAPI:          sourceAPI,
		CouponCode:         candidate.CouponCode,
		CouponRequired:     candidate.CouponRequired,
		ExpiresAt:          candidate.ExpiresAt,
	}
}

// invalidateCatalogCache 入库后失效分类/商店目录缓存
func (s *IngestService) invalidateCatalogCache(ctx context.Context) {
	if !cache.Enabled() {
		return
	}
	if err := cache.Del(ctx, constants.CacheKeyCategories); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "key", constants.CacheKeyCategories, "error", err)
	}
	if err := cache.Del(ctx, constants.CacheKeyStores); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "key", constants.CacheKeyStores, "error", err)
	}
}
