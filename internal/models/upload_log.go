package models

import "time"

// UploadLog 批量导入记录表
type UploadLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`                               // 主键
	Filename      string    `gorm:"type:varchar(300);not null" json:"filename"`         // 上传文件名
	Format        string    `gorm:"type:varchar(20);not null" json:"format"`            // 文件格式（csv/json）
	SourceAPI     string    `gorm:"type:varchar(60);not null;index" json:"source_api"`  // 来源标记
	TotalRows     int       `gorm:"not null;default:0" json:"total_rows"`               // 解析出的候选条数
	CreatedCount  int       `gorm:"not null;default:0" json:"created_count"`            // 入库条数
	RejectedCount int       `gorm:"not null;default:0" json:"rejected_count"`           // 驳回条数
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`      // 处理状态
	ErrorSamples  JSON      `gorm:"type:json" json:"error_samples"`                     // 驳回原因样本（行号 -> 错误）
	AdminID       uint      `gorm:"index" json:"admin_id"`                              // 操作管理员
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                            // 导入时间
}

// TableName 指定表名
func (UploadLog) TableName() string {
	return "upload_logs"
}
