package db

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOpenSQLiteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")
	gdb, err := Open(DriverSQLite, path, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected parent directory to exist: %v", err)
	}
	if !gdb.Migrator().HasTable(&Subscriber{}) {
		t.Fatalf("expected subscribers table")
	}
	sqlDB, _ := gdb.DB()
	sqlDB.Close()
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x", nil); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(DriverPostgres, "", nil); err == nil {
		t.Fatalf("expected error for missing postgres dsn")
	}
}

func TestModelHooksAndHelpers(t *testing.T) {
	dsn := fmt.Sprintf("file:models-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(DriverSQLite, dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	user := SiteUser{FirstName: "Dan", LastName: "Siegel"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if len(user.ID) != 36 {
		t.Fatalf("expected generated uuid, got %q", user.ID)
	}
	if user.FullName() != "Dan Siegel" {
		t.Fatalf("unexpected full name %q", user.FullName())
	}

	file := UnderwritingProspectFile{PropertyID: "7f4c1f0e-9a59-4a6b-8f44-3c1f0a7d2b11", Name: "Rent Roll.XLSX"}
	if err := gdb.Create(&file).Error; err != nil {
		t.Fatalf("create file failed: %v", err)
	}
	want := "underwriting/7f4c1f0e-9a59-4a6b-8f44-3c1f0a7d2b11/" + file.ID + ".XLSX"
	if file.StoragePath() != want {
		t.Fatalf("expected %q, got %q", want, file.StoragePath())
	}

	link := SocialLink{Value: "dansiegel", SocialProvider: SocialProvider{URITemplate: "https://github.com/{0}"}}
	if link.URI() != "https://github.com/dansiegel" {
		t.Fatalf("unexpected uri %q", link.URI())
	}
}
