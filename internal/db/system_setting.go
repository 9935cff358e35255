package db

import "gorm.io/gorm"

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeySiteTitle 表示站点标题。
	SettingKeySiteTitle = "site_title"
	// SettingKeyLegalBusinessName 表示公司注册名称。
	SettingKeyLegalBusinessName = "legal_business_name"
	// SettingKeyAddress 表示公司街道地址。
	SettingKeyAddress = "address"
	// SettingKeyCity 表示城市。
	SettingKeyCity = "city"
	// SettingKeyState 表示州/省。
	SettingKeyState = "state"
	// SettingKeyPostalCode 表示邮编。
	SettingKeyPostalCode = "postal_code"
	// SettingKeyPublicEmail 表示对外公开的邮箱。
	SettingKeyPublicEmail = "public_email"
	// SettingKeyNotificationEmail 表示表单通知的接收邮箱。
	SettingKeyNotificationEmail = "notification_email"
)
