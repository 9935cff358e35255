package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteUser 是门户团队成员的公开资料，API 只读。
type SiteUser struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	FirstName   string `gorm:"size:100;index:idx_site_users_name,priority:1;not null"`
	LastName    string `gorm:"size:100;index:idx_site_users_name,priority:2;not null"`
	DisplayName string `gorm:"size:200"`
	Email       string `gorm:"size:255"`
	PhoneNumber string `gorm:"size:50"`
	Title       string `gorm:"size:150"`
	Bio         string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	SocialLinks []SocialLink `gorm:"foreignKey:UserID"`
}

// TableName 自定义表名以保持命名一致。
func (SiteUser) TableName() string {
	return "site_users"
}

// BeforeCreate 在未指定主键时生成 UUID。
func (u *SiteUser) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(u.ID) == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName 返回 "First Last"，DisplayName 为空时作为展示名回退。
func (u SiteUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SocialProvider 定义社交平台及其链接模板，模板中的 {0} 会被替换为用户填写的值。
type SocialProvider struct {
	gorm.Model
	Name        string `gorm:"size:80;uniqueIndex;not null"`
	Icon        string `gorm:"size:80"`
	URITemplate string `gorm:"column:uri_template;size:255;not null"`
}

// TableName 返回自定义表名
func (SocialProvider) TableName() string {
	return "social_providers"
}

// SocialLink 将用户与社交平台关联，Sort 值越小越靠前。
type SocialLink struct {
	gorm.Model
	UserID           string `gorm:"type:varchar(36);index;not null"`
	SocialProviderID uint   `gorm:"not null"`
	SocialProvider   SocialProvider
	Value            string `gorm:"size:255;not null"`
	Sort             int    `gorm:"default:0"`
}

// TableName 返回自定义表名
func (SocialLink) TableName() string {
	return "social_links"
}

// URI 使用平台模板生成最终链接。
func (l SocialLink) URI() string {
	return strings.ReplaceAll(l.SocialProvider.URITemplate, "{0}", l.Value)
}

// HighlightedUser 标记在关于页重点展示的成员，Order 升序排列。
type HighlightedUser struct {
	gorm.Model
	UserID string   `gorm:"type:varchar(36);uniqueIndex;not null"`
	User   SiteUser `gorm:"foreignKey:UserID"`
	Order  int      `gorm:"column:display_order;default:0"`
}

// TableName 返回自定义表名
func (HighlightedUser) TableName() string {
	return "highlighted_users"
}
