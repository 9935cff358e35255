package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/service"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondInternal 记录错误并返回统一的 500 响应
func respondInternal(c *gin.Context, err error) {
	c.Error(err)
	logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	respondError(c, http.StatusInternalServerError, internalErrorMessage)
}

func parseUUIDParam(c *gin.Context, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

// requestInfo 提取表单与 vCard 需要的请求信息，配置了站点地址时以其为准
func (a *API) requestInfo(c *gin.Context) service.RequestInfo {
	info := requestInfo(c)
	if a.baseURL != nil {
		info.Scheme = a.baseURL.Scheme
		info.Host = a.baseURL.Host
	}
	return info
}

func requestInfo(c *gin.Context) service.RequestInfo {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.ToLower(strings.Split(forwarded, ",")[0])
	}
	return service.RequestInfo{
		Scheme:   strings.TrimSpace(scheme),
		Host:     c.Request.Host,
		ClientIP: c.ClientIP(),
	}
}

func attachmentHeaders(fileName string) map[string]string {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	return map[string]string{"Content-Disposition": disposition}
}

func serveStream(c *gin.Context, size int64, contentType string, r io.Reader, headers map[string]string) {
	c.DataFromReader(http.StatusOK, size, contentType, r, headers)
}
