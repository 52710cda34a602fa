package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/http/response"
	"github.com/dealsphere/dealsphere/internal/repository"
	"github.com/dealsphere/dealsphere/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminDeals 获取优惠列表 (Admin)
func (h *Handler) GetAdminDeals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.DealListFilter{
		Page:      page,
		PageSize:  pageSize,
		DealType:  strings.TrimSpace(c.Query("deal_type")),
		Category:  strings.TrimSpace(c.Query("category")),
		Store:     strings.TrimSpace(c.Query("store")),
		SourceAPI: strings.TrimSpace(c.Query("source_api")),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid request", err)
			return
		}
		filter.IsActive = &parsed
	}
	if raw := strings.TrimSpace(c.Query("is_approved")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid request", err)
			return
		}
		filter.IsApproved = &parsed
	}
	if raw := strings.TrimSpace(c.Query("min_score")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid request", err)
			return
		}
		filter.MinScore = &parsed
	}

	deals, total, err := h.DealService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load deals", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, deals, pagination)
}

// GetAdminPendingDeals 获取待审核优惠列表 (Admin)
func (h *Handler) GetAdminPendingDeals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	deals, total, err := h.DealService.ListPending(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load deals", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, deals, pagination)
}

// GetAdminDeal 获取优惠详情 (Admin)
func (h *Handler) GetAdminDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	deal, err := h.DealService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "deal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load deal", err)
		return
	}

	response.Success(c, deal)
}

// SubmitDealRequest 提交优惠请求
type SubmitDealRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	OriginalPrice      string     `json:"original_price"`
	SalePrice          string     `json:"sale_price"`
	DiscountPercentage int        `json:"discount_percentage"`
	Store              string     `json:"store"`
	Category           string     `json:"category"`
	AffiliateURL       string     `json:"affiliate_url"`
	ImageURL           string     `json:"image_url"`
	CouponCode         string     `json:"coupon_code"`
	CouponRequired     bool       `json:"coupon_required"`
	SourceAPI          string     `json:"source_api"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

func (r SubmitDealRequest) toCandidateInput() service.DealCandidateInput {
	return service.DealCandidateInput{
		Title:              r.Title,
		Description:        r.Description,
		OriginalPrice:      r.OriginalPrice,
		SalePrice:          r.SalePrice,
		DiscountPercentage: r.DiscountPercentage,
		Store:              r.Store,
		Category:           r.Category,
		AffiliateURL:       r.AffiliateURL,
		ImageURL:           r.ImageURL,
		CouponCode:         r.CouponCode,
		CouponRequired:     r.CouponRequired,
		SourceAPI:          r.SourceAPI,
		ExpiresAt:          r.ExpiresAt,
	}
}

// SubmitDeal 提交单条优惠走接入流水线
func (h *Handler) SubmitDeal(c *gin.Context) {
	var req SubmitDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	outcome, err := h.IngestService.Submit(c.Request.Context(), req.toCandidateInput())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to save deal", err)
		return
	}

	response.Success(c, outcome)
}

// UpdateDealRequest 更新优惠请求
type UpdateDealRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	OriginalPrice  *string `json:"original_price"`
	SalePrice      *string `json:"sale_price"`
	Store          *string `json:"store"`
	Category       *string `json:"category"`
	AffiliateURL   *string `json:"affiliate_url"`
	ImageURL       *string `json:"image_url"`
	DealType       *string `json:"deal_type"`
	CouponCode     *string `json:"coupon_code"`
	CouponRequired *bool   `json:"coupon_required"`
	ExpiresAt      *string `json:"expires_at"`
}

// UpdateDeal 更新优惠
func (h *Handler) UpdateDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	input := service.DealUpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		OriginalPrice:  req.OriginalPrice,
		SalePrice:      req.SalePrice,
		Store:          req.Store,
		Category:       req.Category,
		AffiliateURL:   req.AffiliateURL,
		ImageURL:       req.ImageURL,
		DealType:       req.DealType,
		CouponCode:     req.CouponCode,
		CouponRequired: req.CouponRequired,
	}
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ExpiresAt))
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid request", err)
			return
		}
		input.ExpiresAt = &parsed
	}

	deal, err := h.DealService.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "deal not found", nil)
		case errors.Is(err, service.ErrInvalidURL):
			respondError(c, response.CodeBadRequest, "invalid url", nil)
		case errors.Is(err, service.ErrInvalidDealType):
			respondError(c, response.CodeBadRequest, "invalid deal type", nil)
		case errors.Is(err, service.ErrInvalidPrice):
			respondError(c, response.CodeBadRequest, "invalid price", nil)
		default:
			respondError(c, response.CodeInternal, "failed to save deal", err)
		}
		return
	}

	response.Success(c, deal)
}

// ApproveDeal 审核通过并上架
func (h *Handler) ApproveDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	deal, err := h.DealService.Approve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "deal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to save deal", err)
		return
	}

	response.Success(c, deal)
}

// RejectDealRequest 驳回请求
type RejectDealRequest struct {
	Reason string `json:"reason"`
}

// RejectDeal 驳回并下架
func (h *Handler) RejectDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	// 允许空请求体驳回
	var req RejectDealRequest
	_ = c.ShouldBindJSON(&req)

	deal, err := h.DealService.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "deal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to save deal", err)
		return
	}

	response.Success(c, deal)
}

// DeactivateDeal 下架优惠
func (h *Handler) DeactivateDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := h.DealService.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "deal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to save deal", err)
		return
	}

	response.Success(c, nil)
}
