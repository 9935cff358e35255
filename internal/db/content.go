package db

import "time"

// CustomContent 保存 CMS 页面片段，HTML 中可包含 {City} 等站点占位符。
type CustomContent struct {
	ID          string `gorm:"size:100;primaryKey"`
	Title       string `gorm:"size:200"`
	HTMLContent string `gorm:"column:html_content;type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 返回自定义表名
func (CustomContent) TableName() string {
	return "custom_contents"
}
