package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/config"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/handler"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/router"
	"github.com/mfportal/internal/service"
	"github.com/mfportal/internal/storage"
	"github.com/mfportal/internal/view"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DSN()); err != nil {
		zlog.Fatal("failed to initialize database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}

	api, err := buildAPI(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to build services", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, zlog, cfg.TrustedProxies),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildAPI(cfg config.AppConfig, zlog *zap.Logger) (*handler.API, error) {
	templates, err := service.NewTemplateProvider()
	if err != nil {
		return nil, err
	}

	blobs := storage.NewLocalStorage(cfg.StorageDir)
	webRoot := storage.NewLocalStorage(cfg.WebRoot)

	site := service.NewSystemSettingService(db.DB, cfg.Site)
	geo := service.NewGracefulIPLookup(service.NewHTTPIPLookup(cfg.Geo.BaseURL, cfg.Geo.Timeout))
	overrides := service.NewStorageBrandSource(blobs, "brand")

	return handler.NewAPI(handler.Deps{
		DB:       db.DB,
		Site:     site,
		Profiles: service.NewProfileService(db.DB),
		Branding: service.NewBrandingService(overrides, webRoot, view.DefaultBrandingPath, view.DefaultTheme()),
		Content:  service.NewContentService(db.DB, site),
		Files:    service.NewFileService(db.DB, blobs),
		Forms: service.NewFormsService(service.FormsDeps{
			DB:        db.DB,
			Site:      site,
			Validator: service.NewSyntaxEmailValidator(),
			Templates: templates,
			Mail:      service.NewEmailSender(cfg.SMTP, zlog),
			Geo:       geo,
		}),
		Geo:     geo,
		BaseURL: cfg.SiteBaseURL,
	}), nil
}
