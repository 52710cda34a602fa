package public

import (
	"strconv"
	"strings"

	"github.com/dealsphere/dealsphere/internal/http/response"
	"github.com/dealsphere/dealsphere/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDeals 获取公开优惠列表
func (h *Handler) GetDeals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	deals, total, err := h.DealService.ListPublic(service.PublicDealListInput{
		Page:     page,
		PageSize: pageSize,
		DealType: strings.TrimSpace(c.Query("deal_type")),
		Category: strings.TrimSpace(c.Query("category")),
		Store:    strings.TrimSpace(c.Query("store")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
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

// GetDeal 获取公开优惠详情
func (h *Handler) GetDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	deal, err := h.DealService.GetPublicByID(id)
	if err != nil {
		respondDealLookupError(c, err)
		return
	}

	response.Success(c, deal)
}

// TrackDealClick 记录优惠点击
func (h *Handler) TrackDealClick(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	err := h.DealService.TrackClick(c.Request.Context(), id, service.ClickMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})
	if err != nil {
		respondDealTrackError(c, err)
		return
	}

	response.Success(c, gin.H{"tracked": true})
}

// TrackDealShareRequest 分享上报请求
type TrackDealShareRequest struct {
	Platform string `json:"platform" binding:"required"`
}

// TrackDealShare 记录优惠分享
func (h *Handler) TrackDealShare(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req TrackDealShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	if err := h.DealService.TrackShare(c.Request.Context(), id, req.Platform, c.ClientIP()); err != nil {
		respondDealTrackError(c, err)
		return
	}

	response.Success(c, gin.H{"tracked": true})
}

// GetCategories 获取上架优惠的分类目录
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.DealService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load categories", err)
		return
	}

	response.Success(c, categories)
}

// GetStores 获取上架优惠的商店目录
func (h *Handler) GetStores(c *gin.Context) {
	stores, err := h.DealService.Stores(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load stores", err)
		return
	}

	response.Success(c, stores)
}
