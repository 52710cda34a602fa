// Package aiscore 提供优惠信息的 AI 评分能力与本地降级规则。
package aiscore

import (
	"context"

	"github.com/dealsphere/dealsphere/internal/models"
)

// Candidate 待评分的优惠候选
type Candidate struct {
	Title              string
	Description        string
	OriginalPrice      models.Money
	SalePrice          models.Money
	DiscountPercentage int
	Store              string
	Category           string
}

// Verdict 评分结论
// Category 非空时覆盖候选自带分类；SuggestedTitle 非空时覆盖候选标题。
type Verdict struct {
	IsValid        bool
	Score          float64
	Category       string
	DealType       string
	Reasons        []string
	SuggestedTitle string
	Fallback       bool
}

// Scorer 优惠评分接口
// 实现不允许返回错误：远端失败时必须给出降级结论。
type Scorer interface {
	Score(ctx context.Context, candidate Candidate) Verdict
}
