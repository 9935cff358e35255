package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/metrics"
	"github.com/mfportal/internal/service"
	"go.uber.org/zap"
)

const notFoundPath = "/not-found"

type socialLinkPayload struct {
	Icon string `json:"icon"`
	Name string `json:"name"`
	Link string `json:"link"`
}

type profilePayload struct {
	ID          string              `json:"id"`
	DisplayName string              `json:"displayName"`
	Bio         string              `json:"bio"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Title       string              `json:"title"`
	Links       []socialLinkPayload `json:"links"`
}

func newProfilePayload(user db.SiteUser) profilePayload {
	displayName := strings.TrimSpace(user.DisplayName)
	if displayName == "" {
		displayName = user.FullName()
	}

	links := make([]socialLinkPayload, 0, len(user.SocialLinks))
	for _, link := range user.SocialLinks {
		links = append(links, socialLinkPayload{
			Icon: link.SocialProvider.Icon,
			Name: link.SocialProvider.Name,
			Link: link.URI(),
		})
	}

	return profilePayload{
		ID:          user.ID,
		DisplayName: displayName,
		Bio:         user.Bio,
		Email:       user.Email,
		Phone:       user.PhoneNumber,
		Title:       user.Title,
		Links:       links,
	}
}

// GetUserProfile 按姓名精确查找团队成员资料
func (a *API) GetUserProfile(c *gin.Context) {
	user, err := a.profiles.FindByName(c.Request.Context(), c.Param("firstName"), c.Param("lastName"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, newProfilePayload(*user))
}

// ListHighlightedProfiles 返回首页展示的团队成员，按展示顺序排列
func (a *API) ListHighlightedProfiles(c *gin.Context) {
	users, err := a.profiles.ListHighlighted(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}

	items := make([]profilePayload, 0, len(users))
	for _, user := range users {
		items = append(items, newProfilePayload(user))
	}
	c.JSON(http.StatusOK, items)
}

// DownloadVCard 生成团队成员的联系人名片，找不到成员时跳转到 /not-found
func (a *API) DownloadVCard(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := a.profiles.FindByID(ctx, c.Param("userId"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			metrics.Downloads.WithLabelValues("vcard", "not_found").Inc()
			c.Redirect(http.StatusFound, notFoundPath)
			return
		}
		respondInternal(c, err)
		return
	}

	site, err := a.site.SiteInfo(ctx)
	if err != nil {
		respondInternal(c, err)
		return
	}

	req := a.requestInfo(c)
	location, err := a.geo.Lookup(ctx, req.ClientIP, req.Host)
	if err != nil {
		logger.FromContext(ctx).Warn("vcard geolocation failed", zap.Error(err))
		location = service.IPLocation{IP: req.ClientIP}
	}

	card, err := service.BuildVCard(service.VCardInput{
		User:              *user,
		LegalBusinessName: site.LegalBusinessName,
		Location:          location,
		Now:               time.Now(),
	})
	if err != nil {
		metrics.Downloads.WithLabelValues("vcard", "error").Inc()
		respondInternal(c, err)
		return
	}

	metrics.Downloads.WithLabelValues("vcard", "served").Inc()
	serveStream(c, int64(len(card)), service.VCardMIMEType, bytes.NewReader(card), attachmentHeaders(service.VCardFileName(*user)))
}
