package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfportal/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrProfileNotFound 在指定的成员资料不存在时返回
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileInvalidInput 在输入数据不完整时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
)

// ProfileService 负责读取团队成员资料及其社交链接
// 写入方法只供种子脚本与测试使用，HTTP 层只读

type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// ProfileInput 描述创建成员资料时可设置的字段
type ProfileInput struct {
	ID          string
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
	PhoneNumber string
	Title       string
	Bio         string
}

func (s *ProfileService) withLinks(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("SocialLinks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort ASC, id ASC")
		}).
		Preload("SocialLinks.SocialProvider")
}

// FindByName 按名与姓精确匹配（区分大小写），并加载社交链接
func (s *ProfileService) FindByName(ctx context.Context, firstName, lastName string) (*db.SiteUser, error) {
	var user db.SiteUser
	err := s.withLinks(ctx).
		Where("first_name = ? AND last_name = ?", firstName, lastName).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile by name: %w", err)
	}
	return &user, nil
}

// FindByID 按主键获取成员资料
func (s *ProfileService) FindByID(ctx context.Context, id string) (*db.SiteUser, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, ErrProfileNotFound
	}

	var user db.SiteUser
	if err := s.withLinks(ctx).Where("id = ?", trimmed).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &user, nil
}

// ListHighlighted 返回关于页重点展示的成员，按 Order 升序
func (s *ProfileService) ListHighlighted(ctx context.Context) ([]db.SiteUser, error) {
	var highlighted []db.HighlightedUser
	err := s.db.WithContext(ctx).
		Preload("User.SocialLinks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort ASC, id ASC")
		}).
		Preload("User.SocialLinks.SocialProvider").
		Order("display_order ASC, id ASC").
		Find(&highlighted).Error
	if err != nil {
		return nil, fmt.Errorf("list highlighted profiles: %w", err)
	}

	users := make([]db.SiteUser, 0, len(highlighted))
	for _, item := range highlighted {
		if item.User.ID == "" {
			continue
		}
		users = append(users, item.User)
	}
	return users, nil
}

// CreateUser 新建成员资料
func (s *ProfileService) CreateUser(ctx context.Context, input ProfileInput) (*db.SiteUser, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrProfileInvalidInput)
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, fmt.Errorf("%w: last name is required", ErrProfileInvalidInput)
	}

	user := db.SiteUser{
		ID:          strings.TrimSpace(input.ID),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       strings.TrimSpace(input.Email),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Title:       strings.TrimSpace(input.Title),
		Bio:         strings.TrimSpace(input.Bio),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.FullName()
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &user, nil
}

// EnsureProvider 按名称查找社交平台，不存在时创建
func (s *ProfileService) EnsureProvider(ctx context.Context, name, icon, uriTemplate string) (*db.SocialProvider, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: provider name is required", ErrProfileInvalidInput)
	}

	provider := db.SocialProvider{Name: trimmed}
	err := s.db.WithContext(ctx).
		Where(db.SocialProvider{Name: trimmed}).
		Attrs(db.SocialProvider{Icon: strings.TrimSpace(icon), URITemplate: strings.TrimSpace(uriTemplate)}).
		FirstOrCreate(&provider).Error
	if err != nil {
		return nil, fmt.Errorf("ensure social provider: %w", err)
	}
	return &provider, nil
}

// AddSocialLink 为成员追加社交链接，排序值自动追加到末尾
func (s *ProfileService) AddSocialLink(ctx context.Context, userID string, providerID uint, value string) (*db.SocialLink, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: link value is required", ErrProfileInvalidInput)
	}

	var maxSort int
	if err := s.db.WithContext(ctx).Model(&db.SocialLink{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(sort), -1)").
		Scan(&maxSort).Error; err != nil {
		return nil, fmt.Errorf("resolve social link sort: %w", err)
	}

	link := db.SocialLink{
		UserID:           userID,
		SocialProviderID: providerID,
		Value:            strings.TrimSpace(value),
		Sort:             maxSort + 1,
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("create social link: %w", err)
	}
	return &link, nil
}

// ReorderSocialLinks 按给定顺序重排排序字段
// 传入的 IDs 会被依次赋值 0,1,2...，未包含的条目保持原排序
func (s *ProfileService) ReorderSocialLinks(ctx context.Context, userID string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index, id := range ids {
			if err := tx.Model(&db.SocialLink{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort", index).Error; err != nil {
				return fmt.Errorf("reorder social links: %w", err)
			}
		}
		return nil
	})
}

// Highlight 将成员加入重点展示列表，已存在时更新排序
func (s *ProfileService) Highlight(ctx context.Context, userID string, order int) error {
	var existing db.HighlightedUser
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Model(&existing).Update("display_order", order).Error; err != nil {
			return fmt.Errorf("update highlighted profile: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&db.HighlightedUser{UserID: userID, Order: order}).Error; err != nil {
			return fmt.Errorf("highlight profile: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find highlighted profile: %w", err)
	}
}
