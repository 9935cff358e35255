package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey 是请求 ID 在 header 与 gin 上下文中使用的键。
const RequestIDKey = "X-Request-ID"

type ctxKey struct{}

var log = zap.NewNop()

// Init 按运行环境构建全局 logger：production 输出 JSON，其余环境输出彩色控制台日志。
func Init(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)

	built, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	log = built
	return built, nil
}

// L 返回全局 logger，未初始化时为 no-op。
func L() *zap.Logger {
	return log
}

// WithContext 把 logger 放入 context，供 service 层取用。
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 取出请求级 logger，取不到时回退到全局 logger。
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return log
}

// Middleware 记录每个请求的方法、路径、状态码与耗时，并把带 request_id 的 logger 注入请求上下文。
func Middleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString(RequestIDKey)
		if requestID == "" {
			requestID = c.Request.Header.Get(RequestIDKey)
		}

		reqLogger := base.With(zap.String("request_id", requestID))
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			reqLogger.Error("HTTP request failed", fields...)
			return
		}
		reqLogger.Info("HTTP request completed", fields...)
	}
}
