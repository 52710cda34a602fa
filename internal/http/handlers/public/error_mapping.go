package public

import (
	"errors"

	"github.com/dealsphere/dealsphere/internal/http/response"
	"github.com/dealsphere/dealsphere/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var dealLookupErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "deal not found"},
}

var dealTrackErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "deal not found"},
	{target: service.ErrDealInactive, code: response.CodeBadRequest, msg: "deal inactive"},
	{target: service.ErrInvalidPlatform, code: response.CodeBadRequest, msg: "invalid share platform"},
}

func respondDealLookupError(c *gin.Context, err error) {
	respondWithMappedError(c, err, dealLookupErrorRules, response.CodeInternal, "failed to load deal")
}

func respondDealTrackError(c *gin.Context, err error) {
	respondWithMappedError(c, err, dealTrackErrorRules, response.CodeInternal, "failed to record event")
}
