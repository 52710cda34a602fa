package repository

import "time"

// DealListFilter 查询优惠列表的过滤条件
type DealListFilter struct {
	Page        int
	PageSize    int
	DealType    string
	Category    string
	Store       string
	SourceAPI   string
	Search      string
	IsActive    *bool
	IsApproved  *bool
	OnlyPending bool
	MinScore    *float64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DealClickListFilter 查询点击记录的过滤条件
type DealClickListFilter struct {
	Page        int
	PageSize    int
	DealID      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UploadLogListFilter 查询导入记录的过滤条件
type UploadLogListFilter struct {
	Page      int
	PageSize  int
	SourceAPI string
	Status    string
}

// BannerListFilter 查询 Banner 列表的过滤条件
type BannerListFilter struct {
	Page      int
	PageSize  int
	Position  string
	Search    string
	IsActive  *bool
	OrderBy   string
	OnlyValid bool
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
