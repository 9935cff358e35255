package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/handler"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/metrics"
	"github.com/mfportal/internal/middleware"
	"github.com/mfportal/internal/service"
	"go.uber.org/zap"
)

// SetupRouter 配置 Gin 引擎、公共中间件和全部门户路由。
// 只有来自 trustedProxies 的请求才会采用 X-Forwarded-For 中的客户端 IP。
func SetupRouter(api *handler.API, log *zap.Logger, trustedProxies []string) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		log.Error("invalid trusted proxies, ignoring forwarded headers", zap.Strings("proxies", trustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware())

	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", metrics.Handler())

	// 团队成员资料
	about := r.Group("/api/about")
	{
		about.GET("/highlighted", api.ListHighlightedProfiles)
		about.GET("/profile/vcard/:userId", api.DownloadVCard)
		about.GET("/profile/:firstName/:lastName", api.GetUserProfile)
	}

	// 品牌图片
	branding := r.Group("/theme/branding")
	{
		branding.GET("/logo", api.ServeBrandAsset(service.AssetLogo))
		branding.GET("/logo-side", api.ServeBrandAsset(service.AssetLogoSide))
		branding.GET("/logo-dark", api.ServeBrandAsset(service.AssetLogoDark))
		branding.GET("/logo-dark-side", api.ServeBrandAsset(service.AssetLogoDarkSide))
		branding.GET("/resource", api.ServeThemeResource)
	}

	r.GET("/api/content/:contentId", api.GetContent)
	r.GET("/api/files/property/:propertyId/file/:fileId", api.DownloadUnderwritingFile)

	// 表单同时接受 GET 查询参数与 POST 请求体
	forms := r.Group("/api/forms")
	{
		forms.Match([]string{http.MethodGet, http.MethodPost}, "/contact-us", api.ContactUs)
		forms.Match([]string{http.MethodGet, http.MethodPost}, "/investor-inquiry", api.InvestorInquiry)
		forms.Match([]string{http.MethodGet, http.MethodPost}, "/newsletter-subscriber", api.NewsletterSubscriber)
	}

	r.GET("/subscriber/confirmation/:code", api.ConfirmSubscriber)

	return r
}
