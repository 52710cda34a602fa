package service

import "errors"

// 服务层哨兵错误，handler 通过 errors.Is 映射为响应码
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrDealInactive       = errors.New("deal inactive")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidURL         = errors.New("invalid url")
	ErrInvalidDealType    = errors.New("invalid deal type")
	ErrInvalidPlatform    = errors.New("invalid share platform")
	ErrEmptyFile          = errors.New("empty import file")
	ErrUnsupportedFormat  = errors.New("unsupported import format")
	ErrFileTooLarge       = errors.New("import file too large")
	ErrTooManyRows        = errors.New("too many rows in import file")
	ErrInvalidBanner      = errors.New("invalid banner")

	ErrDashboardRangeInvalid = errors.New("invalid dashboard range")
	ErrFeedSourceUnknown     = errors.New("unknown feed source")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)
