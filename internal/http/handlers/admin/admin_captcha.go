package admin

import (
	"github.com/dealsphere/dealsphere/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetLoginCaptcha 获取登录验证码
// 未启用验证码时仅返回 required=false。
func (h *Handler) GetLoginCaptcha(c *gin.Context) {
	if h.CaptchaService == nil || !h.CaptchaService.LoginCaptchaRequired() {
		response.Success(c, gin.H{"required": false})
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generate failed", err)
		return
	}

	response.Success(c, gin.H{
		"required":     true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
