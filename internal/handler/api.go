package handler

import (
	"net/url"
	"strings"

	"github.com/mfportal/internal/service"
	"gorm.io/gorm"
)

// Deps 汇总 HTTP 处理器所需的服务，由 cmd/server 在启动时构造。
type Deps struct {
	DB       *gorm.DB
	Site     service.SiteInfoProvider
	Profiles *service.ProfileService
	Branding *service.BrandingService
	Content  *service.ContentService
	Files    *service.FileService
	Forms    *service.FormsService
	Geo      service.IPLookup
	// BaseURL 非空时替代请求中的 scheme://host 生成邮件链接
	BaseURL string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	site     service.SiteInfoProvider
	profiles *service.ProfileService
	branding *service.BrandingService
	content  *service.ContentService
	files    *service.FileService
	forms    *service.FormsService
	geo      service.IPLookup
	baseURL  *url.URL
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Deps) *API {
	geo := deps.Geo
	if geo == nil {
		geo = service.NewGracefulIPLookup(nil)
	}

	var baseURL *url.URL
	if raw := strings.TrimSpace(deps.BaseURL); raw != "" {
		if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" && parsed.Host != "" {
			baseURL = parsed
		}
	}

	return &API{
		db:       deps.DB,
		site:     deps.Site,
		profiles: deps.Profiles,
		branding: deps.Branding,
		content:  deps.Content,
		files:    deps.Files,
		forms:    deps.Forms,
		geo:      geo,
		baseURL:  baseURL,
	}
}

// DB exposes the underlying gorm instance for the health check and tests.
func (a *API) DB() *gorm.DB {
	return a.db
}
