package models

import "time"

// DealClick 优惠点击记录表
type DealClick struct {
	ID        uint      `gorm:"primarykey" json:"id"`                            // 主键
	DealID    string    `gorm:"type:varchar(36);not null;index" json:"deal_id"`  // 优惠 ID
	ClientIP  string    `gorm:"type:varchar(64)" json:"client_ip"`               // 客户端 IP
	UserAgent string    `gorm:"type:varchar(500)" json:"user_agent"`             // 客户端 UA
	Referer   string    `gorm:"type:varchar(1000)" json:"referer"`               // 来源页
	CreatedAt time.Time `gorm:"index" json:"created_at"`                         // 点击时间
}

// TableName 指定表名
func (DealClick) TableName() string {
	return "deal_clicks"
}
