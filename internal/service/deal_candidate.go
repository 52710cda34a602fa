package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/aiscore"
	"github.com/dealsphere/dealsphere/internal/models"

	"github.com/shopspring/decimal"
)

// DealCandidateInput 待接入的优惠候选（来自手工提交、批量导入或联盟 Feed）
// 价格保持原始字符串，解析失败属于结构错误而非请求错误。
type DealCandidateInput struct {
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

// NormalizedCandidate 通过结构校验后的候选，折扣为服务端重算值
type NormalizedCandidate struct {
	Title              string
	Description        string
	OriginalPrice      models.Money
	SalePrice          models.Money
	DiscountPercentage int
	Store              string
	Category           string
	AffiliateURL       string
	ImageURL           string
	CouponCode         string
	CouponRequired     bool
	SourceAPI          string
	ExpiresAt          *time.Time
}

// ScorerCandidate 转换为评分器输入
func (c *NormalizedCandidate) ScorerCandidate() aiscore.Candidate {
	return aiscore.Candidate{
		Title:              c.Title,
		Description:        c.Description,
		OriginalPrice:      c.OriginalPrice,
		SalePrice:          c.SalePrice,
		DiscountPercentage: c.DiscountPercentage,
		Store:              c.Store,
		Category:           c.Category,
	}
}

// ComputeDerivedFields 结构校验与派生字段计算
// 校验不短路：一次返回全部结构错误。候选自带的折扣值一律忽略。
func ComputeDerivedFields(input DealCandidateInput) (*NormalizedCandidate, []string) {
	structuralErrors := make([]string, 0)

	requiredFields := []struct {
		name  string
		value string
	}{
		{name: "title", value: input.Title},
		{name: "store", value: input.Store},
		{name: "category", value: input.Category},
		{name: "affiliateUrl", value: input.AffiliateURL},
	}
	for _, field := range requiredFields {
		if strings.TrimSpace(field.value) == "" {
			structuralErrors = append(structuralErrors, fmt.Sprintf("MissingField:%s", field.name))
		}
	}

	originalPrice, originalOK := parsePositivePrice(input.OriginalPrice)
	salePrice, saleOK := parsePositivePrice(input.SalePrice)
	if !originalOK || !saleOK {
		structuralErrors = append(structuralErrors, "InvalidPrice")
	} else if salePrice.GreaterThanOrEqual(originalPrice) {
		structuralErrors = append(structuralErrors, "SalePriceNotLower")
	}

	if strings.TrimSpace(input.AffiliateURL) != "" && !validHTTPURL(input.AffiliateURL) {
		structuralErrors = append(structuralErrors, "InvalidUrl:affiliateUrl")
	}
	if strings.TrimSpace(input.ImageURL) != "" && !validHTTPURL(input.ImageURL) {
		structuralErrors = append(structuralErrors, "InvalidUrl:imageUrl")
	}

	if len(structuralErrors) > 0 {
		return nil, structuralErrors
	}

	return &NormalizedCandidate{
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		OriginalPrice:      models.NewMoneyFromDecimal(originalPrice),
		SalePrice:          models.NewMoneyFromDecimal(salePrice),
		DiscountPercentage: computeDiscountPercentage(originalPrice, salePrice),
		Store:              strings.TrimSpace(input.Store),
		Category:           strings.TrimSpace(input.Category),
		AffiliateURL:       strings.TrimSpace(input.AffiliateURL),
		ImageURL:           strings.TrimSpace(input.ImageURL),
		CouponCode:         strings.TrimSpace(input.CouponCode),
		CouponRequired:     input.CouponRequired,
		SourceAPI:          strings.TrimSpace(input.SourceAPI),
		ExpiresAt:          input.ExpiresAt,
	}, nil
}

func parsePositivePrice(raw string) (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return value, true
}

// computeDiscountPercentage 重算折扣百分比并收敛到 [0,100]
func computeDiscountPercentage(originalPrice, salePrice decimal.Decimal) int {
	if originalPrice.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	discount := originalPrice.Sub(salePrice).
		Div(originalPrice).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	if discount < 0 {
		return 0
	}
	if discount > 100 {
		return 100
	}
	return int(discount)
}

func validHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
