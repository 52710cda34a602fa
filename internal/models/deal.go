package models

import (
	"time"

	"gorm.io/gorm"
)

// Deal 优惠信息表
type Deal struct {
	ID                 string         `gorm:"type:varchar(36);primarykey" json:"id"`                        // UUID 主键
	Title              string         `gorm:"type:varchar(300);not null" json:"title"`                      // 标题
	Description        string         `gorm:"type:text" json:"description"`                                 // 描述
	OriginalPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`  // 原价
	SalePrice          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"sale_price"`      // 促销价
	DiscountPercentage int            `gorm:"not null;default:0;index" json:"discount_percentage"`          // 折扣百分比（服务端重算）
	Store              string         `gorm:"type:varchar(120);not null;index" json:"store"`                // 商店名称
	Category           string         `gorm:"type:varchar(120);not null;index" json:"category"`             // 分类名称
	AffiliateURL       string         `gorm:"type:varchar(1000);not null" json:"affiliate_url"`             // 联盟跳转链接
	ImageURL           string         `gorm:"type:varchar(1000);not null" json:"image_url"`                 // 商品图片链接
	AIScore            float64        `gorm:"not null;default:0;index" json:"ai_score"`                     // AI 评分（0-10）
	AIReasons          StringArray    `gorm:"type:json" json:"ai_reasons"`                                  // 评分/驳回理由列表
	DealType           string         `gorm:"type:varchar(20);not null;default:'latest';index" json:"deal_type"` // 分级（top/hot/latest）
	IsActive           bool           `gorm:"default:false;index" json:"is_active"`                         // 是否上架
	IsAIApproved       bool           `gorm:"default:false;index" json:"is_ai_approved"`                    // 是否已通过审核
	SourceAPI          string         `gorm:"type:varchar(60);not null;default:'manual';index" json:"source_api"` // 来源标记
	Popularity         int            `gorm:"not null;default:0;index" json:"popularity"`                   // 热度（点击+分享加权）
	ClickCount         int            `gorm:"not null;default:0" json:"click_count"`                        // 点击次数
	ShareCount         int            `gorm:"not null;default:0" json:"share_count"`                        // 分享次数
	CouponCode         string         `gorm:"type:varchar(120)" json:"coupon_code"`                         // 优惠码
	CouponRequired     bool           `gorm:"default:false" json:"coupon_required"`                         // 是否必须使用优惠码
	ExpiresAt          *time.Time     `gorm:"index" json:"expires_at"`                                      // 过期时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                   // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (Deal) TableName() string {
	return "deals"
}
