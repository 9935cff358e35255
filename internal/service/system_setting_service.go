package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfportal/internal/config"
	"github.com/mfportal/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteInfo 描述站点的公开信息，用于内容占位符、邮件模板与 vCard。
type SiteInfo struct {
	Title             string
	LegalBusinessName string
	Address           string
	City              string
	State             string
	PostalCode        string
	PublicEmail       string
	NotificationEmail string
}

// SiteInfoProvider 在每个请求内提供当前的站点信息。
type SiteInfoProvider interface {
	SiteInfo(ctx context.Context) (SiteInfo, error)
}

// SystemSettingService 提供站点设置的读取与更新能力，数据库为空的项回退到环境变量默认值。
type SystemSettingService struct {
	db       *gorm.DB
	defaults SiteInfo
}

var _ SiteInfoProvider = (*SystemSettingService)(nil)

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, defaults config.SiteDefaults) *SystemSettingService {
	return &SystemSettingService{
		db: gdb,
		defaults: SiteInfo{
			Title:             defaults.Title,
			LegalBusinessName: defaults.LegalBusinessName,
			Address:           defaults.Address,
			City:              defaults.City,
			State:             defaults.State,
			PostalCode:        defaults.PostalCode,
			PublicEmail:       defaults.PublicEmail,
			NotificationEmail: defaults.NotificationEmail,
		},
	}
}

var settingKeys = []string{
	db.SettingKeySiteTitle,
	db.SettingKeyLegalBusinessName,
	db.SettingKeyAddress,
	db.SettingKeyCity,
	db.SettingKeyState,
	db.SettingKeyPostalCode,
	db.SettingKeyPublicEmail,
	db.SettingKeyNotificationEmail,
}

func (i *SiteInfo) field(key string) *string {
	switch key {
	case db.SettingKeySiteTitle:
		return &i.Title
	case db.SettingKeyLegalBusinessName:
		return &i.LegalBusinessName
	case db.SettingKeyAddress:
		return &i.Address
	case db.SettingKeyCity:
		return &i.City
	case db.SettingKeyState:
		return &i.State
	case db.SettingKeyPostalCode:
		return &i.PostalCode
	case db.SettingKeyPublicEmail:
		return &i.PublicEmail
	case db.SettingKeyNotificationEmail:
		return &i.NotificationEmail
	}
	return nil
}

// SiteInfo 读取站点设置，如未设置将返回默认值。
func (s *SystemSettingService) SiteInfo(ctx context.Context) (SiteInfo, error) {
	result := s.defaults

	var records []db.SystemSetting
	if err := s.db.WithContext(ctx).Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		if target := result.field(record.Key); target != nil {
			*target = value
		}
	}

	if result.NotificationEmail == "" {
		result.NotificationEmail = result.PublicEmail
	}

	return result, nil
}

// UpdateSiteInfo 保存站点设置，空值会写入空字符串并在读取时回退默认值。
func (s *SystemSettingService) UpdateSiteInfo(ctx context.Context, input SiteInfo) (SiteInfo, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, strings.TrimSpace(*input.field(key))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SiteInfo{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.SiteInfo(ctx)
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
