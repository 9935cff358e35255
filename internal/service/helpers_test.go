package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mfportal/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return gdb
}

type staticSiteInfo struct {
	info SiteInfo
	err  error
}

func (s staticSiteInfo) SiteInfo(context.Context) (SiteInfo, error) {
	return s.info, s.err
}

func testSiteInfo() SiteInfo {
	return SiteInfo{
		Title:             "Avantgarde Partners",
		LegalBusinessName: "Avantgarde Partners LLC",
		Address:           "100 Main St",
		City:              "Austin",
		State:             "TX",
		PostalCode:        "78701",
		PublicEmail:       "info@avantgarde.test",
		NotificationEmail: "team@avantgarde.test",
	}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) messages() []EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EmailMessage(nil), r.sent...)
}

type stubIPLookup struct {
	location IPLocation
	err      error
	calls    int
}

func (s *stubIPLookup) Lookup(_ context.Context, ip, _ string) (IPLocation, error) {
	s.calls++
	if s.err != nil {
		return IPLocation{IP: ip}, s.err
	}
	loc := s.location
	loc.IP = ip
	return loc, nil
}
