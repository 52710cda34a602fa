package models

import "time"

// SocialShare 社交分享记录表
type SocialShare struct {
	ID        uint      `gorm:"primarykey" json:"id"`                           // 主键
	DealID    string    `gorm:"type:varchar(36);not null;index" json:"deal_id"` // 优惠 ID
	Platform  string    `gorm:"type:varchar(40);not null;index" json:"platform"` // 分享平台
	ClientIP  string    `gorm:"type:varchar(64)" json:"client_ip"`              // 客户端 IP
	CreatedAt time.Time `gorm:"index" json:"created_at"`                        // 分享时间
}

// TableName 指定表名
func (SocialShare) TableName() string {
	return "social_shares"
}
