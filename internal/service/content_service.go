package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfportal/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrContentNotFound 在 CMS 内容不存在时返回
var ErrContentNotFound = errors.New("content not found")

// ContentService 读取 CMS 内容并替换站点占位符
type ContentService struct {
	db   *gorm.DB
	site SiteInfoProvider
}

// NewContentService 构造 ContentService
func NewContentService(gdb *gorm.DB, site SiteInfoProvider) *ContentService {
	return &ContentService{db: gdb, site: site}
}

// Get 按 ID 精确读取原始内容
func (s *ContentService) Get(ctx context.Context, id string) (*db.CustomContent, error) {
	if id == "" {
		return nil, ErrContentNotFound
	}

	var content db.CustomContent
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&content).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &content, nil
}

// Render 读取内容并返回替换占位符后的副本，数据库中的记录保持不变
func (s *ContentService) Render(ctx context.Context, id string) (*db.CustomContent, error) {
	content, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	info, err := s.site.SiteInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("load site info: %w", err)
	}

	rendered := *content
	rendered.HTMLContent = SubstitutePlaceholders(content.HTMLContent, info)
	return &rendered, nil
}

// Save 创建或覆盖内容
func (s *ContentService) Save(ctx context.Context, id, title, html string) (*db.CustomContent, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, errors.New("content id is required")
	}

	content := db.CustomContent{ID: trimmed, Title: strings.TrimSpace(title), HTMLContent: html}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "html_content", "updated_at"}),
	}).Create(&content).Error
	if err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}
	return &content, nil
}

// SubstitutePlaceholders replaces the site tokens in a single pass. Matching is
// case-sensitive and substituted values are never rescanned.
func SubstitutePlaceholders(html string, info SiteInfo) string {
	if !strings.Contains(html, "{") {
		return html
	}
	return strings.NewReplacer(
		"{Address}", info.Address,
		"{City}", info.City,
		"{State}", info.State,
		"{PostalCode}", info.PostalCode,
		"{PublicEmail}", info.PublicEmail,
		"{LegalBusinessName}", info.LegalBusinessName,
	).Replace(html)
}
