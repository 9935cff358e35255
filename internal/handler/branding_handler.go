package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/metrics"
	"github.com/mfportal/internal/service"
)

// ServeBrandAsset returns a handler that streams one logo variant.
func (a *API) ServeBrandAsset(asset service.BrandAsset) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := a.branding.Resolve(c.Request.Context(), asset)
		a.writeAsset(c, result, err)
	}
}

// ServeThemeResource 根据 file 查询参数返回主题图片或跳转到主题默认路径
func (a *API) ServeThemeResource(c *gin.Context) {
	result, err := a.branding.ResolveResource(c.Request.Context(), c.Query("file"))
	a.writeAsset(c, result, err)
}

func (a *API) writeAsset(c *gin.Context, result *service.AssetResult, err error) {
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			metrics.Downloads.WithLabelValues("brand", "not_found").Inc()
			c.Status(http.StatusNotFound)
			return
		}
		metrics.Downloads.WithLabelValues("brand", "error").Inc()
		respondInternal(c, err)
		return
	}

	switch result.Kind {
	case service.AssetRedirect:
		metrics.Downloads.WithLabelValues("brand", "redirect").Inc()
		c.Redirect(http.StatusFound, result.RedirectURL)
	case service.AssetServe:
		img := result.Image
		defer img.Content.Close()
		metrics.Downloads.WithLabelValues("brand", "served").Inc()
		serveStream(c, img.Size, img.MIMEType, img.Content, nil)
	default:
		c.Status(http.StatusNotFound)
	}
}
