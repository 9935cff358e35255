package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/metrics"
	"github.com/mfportal/internal/service"
)

// DownloadUnderwritingFile 下载物业尽调文件，任一 ID 不是 UUID 时按未找到处理
func (a *API) DownloadUnderwritingFile(c *gin.Context) {
	propertyID, err := parseUUIDParam(c, "propertyId")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	fileID, err := parseUUIDParam(c, "fileId")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	file, err := a.files.Download(c.Request.Context(), propertyID, fileID)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			metrics.Downloads.WithLabelValues("underwriting", "not_found").Inc()
			c.Status(http.StatusNotFound)
			return
		}
		metrics.Downloads.WithLabelValues("underwriting", "error").Inc()
		respondInternal(c, err)
		return
	}
	defer file.Content.Close()

	metrics.Downloads.WithLabelValues("underwriting", "served").Inc()
	serveStream(c, file.Size, file.MIMEType, file.Content, attachmentHeaders(file.FileName))
}
