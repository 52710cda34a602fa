package constants

// 优惠信息分级常量
const (
	DealTypeTop    = "top"
	DealTypeHot    = "hot"
	DealTypeLatest = "latest"
)

// DealTypes 合法的优惠分级集合（顺序用于展示）
var DealTypes = []string{DealTypeTop, DealTypeHot, DealTypeLatest}

// 优惠信息来源常量
const (
	DealSourceManual     = "manual"
	DealSourceBulkImport = "bulk_import"
	DealSourceAmazon     = "amazon"
	DealSourceCJ         = "cj"
	DealSourceShareASale = "shareasale"
)

// 结构校验错误码常量
const (
	ValidationErrInvalidPrice      = "InvalidPrice"
	ValidationErrSalePriceNotLower = "SalePriceNotLower"
	ValidationErrMissingFieldFmt   = "MissingField:%s"
	ValidationErrInvalidURLFmt     = "InvalidUrl:%s"
)

// 自动发布评分阈值（达到即直接上架，无需人工审核）
const DefaultAutoPublishScore = 8.5

// AI 评分边界常量
const (
	AIScoreMin = 0.0
	AIScoreMax = 10.0
)

// 有效性判定常量（降级规则使用）
const (
	FallbackValidMinDiscount = 10
	FallbackValidMinScore    = 4.0
)

// 社交分享平台常量
const (
	SharePlatformTwitter  = "twitter"
	SharePlatformFacebook = "facebook"
	SharePlatformTelegram = "telegram"
	SharePlatformWhatsApp = "whatsapp"
	SharePlatformOther    = "other"
)

// 热度权重常量（点击 +1、分享 +2）
const (
	PopularityWeightClick = 1
	PopularityWeightShare = 2
)

// 批量导入文件格式常量
const (
	ImportFormatCSV  = "csv"
	ImportFormatJSON = "json"
)

// 批量导入状态常量
const (
	UploadStatusCompleted = "completed"
	UploadStatusPartial   = "partial"
	UploadStatusFailed    = "failed"
)

// 管理员登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 管理员登录失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 队列常量
const (
	QueueDefault      = "default"
	TaskFeedFetch     = "feed:fetch"
	TaskDealURLHealth = "deal:url_health"
	TaskUploadCleanup = "upload:stale_cleanup"
)

// DefaultCleanupRetentionDays 待清理的历史优惠保留天数
const DefaultCleanupRetentionDays = 30

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ds"
)

// 目录缓存键常量（分类/商店去重列表）
const (
	CacheKeyCategories = "catalog:categories"
	CacheKeyStores     = "catalog:stores"
)

// Banner 位置常量
const (
	BannerPositionHomeHero = "home_hero"
)

// Banner 跳转类型常量
const (
	BannerLinkTypeNone     = "none"
	BannerLinkTypeInternal = "internal"
	BannerLinkTypeExternal = "external"
)
