package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	// DriverSQLite 使用本地 sqlite 文件。
	DriverSQLite = "sqlite"
	// DriverPostgres 使用 PostgreSQL，dsn 为 libpq 风格连接串。
	DriverPostgres = "postgres"
)

// Init 初始化数据库连接并执行自动迁移。
// sqlite 驱动下 dsn 为空时将回退到默认值 mfportal.db。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open 根据驱动名称打开数据库，不执行迁移。
func Open(driver, dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "mfportal.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		gdb, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate 自动迁移模式，为门户模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&SiteUser{},
		&SocialProvider{},
		&SocialLink{},
		&HighlightedUser{},
		&CustomContent{},
		&UnderwritingProspectFile{},
		&InvestorProspect{},
		&Subscriber{},
		&SystemSetting{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
