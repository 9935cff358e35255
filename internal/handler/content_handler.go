package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/service"
)

type contentPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	HTMLContent string    `json:"htmlContent"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetContent 返回替换站点占位符后的 CMS 内容
func (a *API) GetContent(c *gin.Context) {
	content, err := a.content.Render(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, contentPayload{
		ID:          content.ID,
		Title:       content.Title,
		HTMLContent: content.HTMLContent,
		UpdatedAt:   content.UpdatedAt,
	})
}
