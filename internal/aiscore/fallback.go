package aiscore

import (
	"fmt"

	"github.com/dealsphere/dealsphere/internal/constants"
)

// FallbackVerdict 基于折扣的本地降级评分规则
// 远端评分不可用（超时、非 2xx、响应不合约定）时使用。
func FallbackVerdict(discount int, reason string) Verdict {
	var score float64
	var dealType string

	switch {
	case discount >= 70:
		score = 9
		dealType = constants.DealTypeTop
	case discount >= 50:
		score = 7
		dealType = constants.DealTypeHot
	case discount >= 30:
		score = 6
		dealType = constants.DealTypeHot
	default:
		score = 5
		dealType = constants.DealTypeLatest
	}

	reasons := []string{fmt.Sprintf("rule-based scoring: %d%% discount", discount)}
	if reason != "" {
		reasons = append(reasons, reason)
	}

	return Verdict{
		IsValid:  discount >= constants.FallbackValidMinDiscount && score >= constants.FallbackValidMinScore,
		Score:    score,
		DealType: dealType,
		Reasons:  reasons,
		Fallback: true,
	}
}

// clampScore 将评分收敛到 [0,10]
func clampScore(score float64) float64 {
	if score < constants.AIScoreMin {
		return constants.AIScoreMin
	}
	if score > constants.AIScoreMax {
		return constants.AIScoreMax
	}
	return score
}

// validDealType 分级取值是否在约定集合内
func validDealType(dealType string) bool {
	for _, t := range constants.DealTypes {
		if t == dealType {
			return true
		}
	}
	return false
}
