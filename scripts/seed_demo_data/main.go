package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/mfportal/internal/config"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/service"
	"github.com/mfportal/internal/storage"
	"github.com/mfportal/internal/view"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// demoPropertyID 是演示尽调文件所属的固定物业 ID
var demoPropertyID = uuid.MustParse("6f1c2a4e-8b0d-4c7e-9a53-2d6b1f0e7c11")

const demoLogoSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="240" height="60" viewBox="0 0 240 60"><rect width="240" height="60" rx="8" fill="#1f3a5f"/><text x="120" y="38" font-family="sans-serif" font-size="22" fill="#ffffff" text-anchor="middle">Portal</text></svg>`

type seeder struct {
	db       *gorm.DB
	profiles *service.ProfileService
	content  *service.ContentService
	files    *service.FileService
	settings *service.SystemSettingService
	webRoot  storage.Storage
	log      *zap.Logger
}

// 演示数据生成器
func main() {
	cfg := config.Load()
	zlog, err := logger.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DSN()); err != nil {
		zlog.Fatal("数据库初始化失败", zap.Error(err))
	}

	s := newSeeder(db.DB, cfg, storage.NewLocalStorage(cfg.StorageDir), storage.NewLocalStorage(cfg.WebRoot), zlog)
	if err := s.run(context.Background()); err != nil {
		zlog.Fatal("演示数据生成失败", zap.Error(err))
	}
	zlog.Info("演示数据生成完成", zap.String("property", demoPropertyID.String()))
}

func newSeeder(gdb *gorm.DB, cfg config.AppConfig, blobs, webRoot storage.Storage, zlog *zap.Logger) *seeder {
	settings := service.NewSystemSettingService(gdb, cfg.Site)
	return &seeder{
		db:       gdb,
		profiles: service.NewProfileService(gdb),
		content:  service.NewContentService(gdb, settings),
		files:    service.NewFileService(gdb, blobs),
		settings: settings,
		webRoot:  webRoot,
		log:      zlog,
	}
}

func (s *seeder) run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{name: "site settings", fn: s.seedSiteInfo},
		{name: "team", fn: s.seedTeam},
		{name: "content", fn: s.seedContent},
		{name: "underwriting files", fn: s.seedUnderwritingFiles},
		{name: "default logo", fn: s.seedDefaultLogo},
	}

	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		s.log.Info("seed step finished", zap.String("step", step.name))
	}
	return nil
}

// 站点设置只在数据库中没有地址时写入
func (s *seeder) seedSiteInfo(ctx context.Context) error {
	current, err := s.settings.SiteInfo(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(current.Address) != "" {
		s.log.Info("站点设置已存在，跳过创建")
		return nil
	}

	current.Address = "1200 Congress Ave, Suite 400"
	current.City = "Austin"
	current.State = "TX"
	current.PostalCode = "78701"
	_, err = s.settings.UpdateSiteInfo(ctx, current)
	return err
}

type demoMember struct {
	input     service.ProfileInput
	links     map[string]string
	highlight int
}

var demoProviders = []struct {
	name     string
	icon     string
	template string
}{
	{name: "LinkedIn", icon: "fab fa-linkedin", template: "https://www.linkedin.com/in/{0}"},
	{name: "Twitter", icon: "fab fa-twitter", template: "https://twitter.com/{0}"},
	{name: "GitHub", icon: "fab fa-github", template: "https://github.com/{0}"},
}

var demoMembers = []demoMember{
	{
		input: service.ProfileInput{
			FirstName:   "Avery",
			LastName:    "Collins",
			Email:       "avery@example.com",
			PhoneNumber: "(512) 555-0142",
			Title:       "Managing Partner",
			Bio:         "Avery leads acquisitions and investor relations across the Sun Belt.",
		},
		links:     map[string]string{"LinkedIn": "averycollins", "Twitter": "averycollins"},
		highlight: 1,
	},
	{
		input: service.ProfileInput{
			FirstName:   "Jordan",
			LastName:    "Reyes",
			Email:       "jordan@example.com",
			PhoneNumber: "(512) 555-0178",
			Title:       "Director of Asset Management",
			Bio:         "Jordan oversees operations and value-add execution for the portfolio.",
		},
		links:     map[string]string{"LinkedIn": "jordanreyes"},
		highlight: 2,
	},
	{
		input: service.ProfileInput{
			FirstName: "Sam",
			LastName:  "Patel",
			Email:     "sam@example.com",
			Title:     "Underwriting Analyst",
		},
		links: map[string]string{"GitHub": "sampatel"},
	},
}

// 团队成员已存在时跳过
func (s *seeder) seedTeam(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.SiteUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("团队成员已存在，跳过创建")
		return nil
	}

	providers := make(map[string]uint, len(demoProviders))
	for _, p := range demoProviders {
		provider, err := s.profiles.EnsureProvider(ctx, p.name, p.icon, p.template)
		if err != nil {
			return err
		}
		providers[p.name] = provider.ID
	}

	for _, member := range demoMembers {
		user, err := s.profiles.CreateUser(ctx, member.input)
		if err != nil {
			return err
		}
		for _, p := range demoProviders {
			value, ok := member.links[p.name]
			if !ok {
				continue
			}
			if _, err := s.profiles.AddSocialLink(ctx, user.ID, providers[p.name], value); err != nil {
				return err
			}
		}
		if member.highlight > 0 {
			if err := s.profiles.Highlight(ctx, user.ID, member.highlight); err != nil {
				return err
			}
		}
	}
	return nil
}

var demoContent = []struct {
	id    string
	title string
	html  string
}{
	{
		id:    "privacy-policy",
		title: "Privacy Policy",
		html:  "<h2>Privacy Policy</h2><p>{LegalBusinessName} respects your privacy. Questions may be sent to <a href=\"mailto:{PublicEmail}\">{PublicEmail}</a>.</p>",
	},
	{
		id:    "terms-and-conditions",
		title: "Terms and Conditions",
		html:  "<h2>Terms and Conditions</h2><p>These terms are governed by the laws of the State of {State}. {LegalBusinessName}, {Address}, {City}, {State} {PostalCode}.</p>",
	},
	{
		id:    "investor-disclaimer",
		title: "Investor Disclaimer",
		html:  "<p>Nothing on this site is an offer to sell securities. Offerings are made only to accredited investors by {LegalBusinessName}.</p>",
	},
}

// 内容按 ID 覆盖写入，可重复执行
func (s *seeder) seedContent(ctx context.Context) error {
	for _, item := range demoContent {
		if _, err := s.content.Save(ctx, item.id, item.title, item.html); err != nil {
			return err
		}
	}
	return nil
}

var demoFiles = []struct {
	name        string
	description string
	body        string
}{
	{name: "Offering Memorandum.pdf", description: "Offering memorandum", body: "%PDF-1.4\n% demo offering memorandum\n"},
	{name: "T12.csv", description: "Trailing twelve month operating statement", body: "month,income,expenses\n2024-01,182000,97000\n"},
	{name: "Rent Roll.txt", description: "Unit level rent roll", body: "Unit 101  2BR  $1,450\nUnit 102  1BR  $1,175\n"},
}

// 演示物业已有文件时跳过
func (s *seeder) seedUnderwritingFiles(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.UnderwritingProspectFile{}).
		Where("property_id = ?", demoPropertyID.String()).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("尽调文件已存在，跳过创建")
		return nil
	}

	for _, f := range demoFiles {
		record, err := s.files.Register(ctx, demoPropertyID, f.name, f.description, strings.NewReader(f.body))
		if err != nil {
			return err
		}
		s.log.Info("registered underwriting file",
			zap.String("name", record.Name),
			zap.String("url", fmt.Sprintf("/api/files/property/%s/file/%s", demoPropertyID, record.ID)))
	}
	return nil
}

// 默认 logo 缺失时写入一个占位 SVG
func (s *seeder) seedDefaultLogo(ctx context.Context) error {
	name := view.DefaultBrandingPath + "/logo.svg"
	exists, err := s.webRoot.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.webRoot.Put(name, strings.NewReader(demoLogoSVG))
	return err
}
