package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfportal/internal/logger"
)

// RequestID 复用客户端传入的 X-Request-ID，没有时生成新的 UUID，并回写到响应头。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(logger.RequestIDKey))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(logger.RequestIDKey, id)
		c.Next()
	}
}
