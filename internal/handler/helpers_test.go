package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfportal/internal/config"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/handler"
	"github.com/mfportal/internal/router"
	"github.com/mfportal/internal/service"
	"github.com/mfportal/internal/storage"
	"github.com/mfportal/internal/view"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type capturingSender struct {
	mu   sync.Mutex
	sent []service.EmailMessage
}

func (s *capturingSender) Send(_ context.Context, msg service.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *capturingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fixedLookup struct {
	location service.IPLocation
}

func (f fixedLookup) Lookup(_ context.Context, ip, _ string) (service.IPLocation, error) {
	loc := f.location
	loc.IP = ip
	return loc, nil
}

type testServer struct {
	engine    *gin.Engine
	db        *gorm.DB
	profiles  *service.ProfileService
	content   *service.ContentService
	files     *service.FileService
	overrides *service.StorageBrandSource
	webRoot   *storage.LocalStorage
	sender    *capturingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	site := service.NewSystemSettingService(gdb, config.SiteDefaults{
		Title:             "Avantgarde Partners",
		LegalBusinessName: "Avantgarde Partners LLC",
		City:              "Austin",
		State:             "TX",
		PublicEmail:       "info@avantgarde.test",
	})
	templates, err := service.NewTemplateProvider()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	blobs := storage.NewLocalStorage(t.TempDir())
	webRoot := storage.NewLocalStorage(t.TempDir())
	overrides := service.NewStorageBrandSource(blobs, "brand")
	sender := &capturingSender{}
	geo := fixedLookup{location: service.IPLocation{City: "Austin", Region: "Texas"}}

	deps := handler.Deps{
		DB:       gdb,
		Site:     site,
		Profiles: service.NewProfileService(gdb),
		Branding: service.NewBrandingService(overrides, webRoot, view.DefaultBrandingPath, view.DefaultTheme()),
		Content:  service.NewContentService(gdb, site),
		Files:    service.NewFileService(gdb, blobs),
		Forms: service.NewFormsService(service.FormsDeps{
			DB:        gdb,
			Site:      site,
			Validator: service.NewSyntaxEmailValidator(),
			Templates: templates,
			Mail:      sender,
			Geo:       geo,
		}),
		Geo: geo,
	}

	return &testServer{
		engine:    router.SetupRouter(handler.NewAPI(deps), nil, []string{"192.0.2.1"}),
		db:        gdb,
		profiles:  deps.Profiles,
		content:   deps.Content,
		files:     deps.Files,
		overrides: overrides,
		webRoot:   webRoot,
		sender:    sender,
	}
}

func (s *testServer) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, target, "", "")
}
