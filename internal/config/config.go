package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	Environment    string
	LogLevel       string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	StorageDir     string
	WebRoot        string
	SiteBaseURL    string
	// TrustedProxies 为空时不信任任何代理头，客户端 IP 取连接地址
	TrustedProxies []string

	SMTP SMTPConfig
	Geo  GeoConfig
	Site SiteDefaults
}

// SMTPConfig 描述发送邮件所需的 SMTP 参数，Host 为空时使用日志发送器。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// GeoConfig 描述 IP 地理位置查询服务。
type GeoConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SiteDefaults 为站点信息提供默认值，数据库中的 system_settings 优先。
type SiteDefaults struct {
	Title             string
	LegalBusinessName string
	Address           string
	City              string
	State             string
	PostalCode        string
	PublicEmail       string
	NotificationEmail string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若工作目录存在 .env 文件会先行加载，不存在时忽略。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	listenAddr := getEnv("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	publicEmail := getEnv("SITE_PUBLIC_EMAIL", "info@example.com")

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		GinMode:        getEnv("GIN_MODE", "release"),
		Environment:    getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDriver: driver,
		DatabasePath:   getEnv("DATABASE_PATH", "data/mfportal.db"),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),
		StorageDir:     getEnv("STORAGE_DIR", "data/storage"),
		WebRoot:        getEnv("WEB_ROOT", "web"),
		SiteBaseURL:    strings.TrimRight(getEnv("SITE_BASE_URL", ""), "/"),
		TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", publicEmail),
			FromName: getEnv("SMTP_FROM_NAME", ""),
			UseTLS:   getEnvAsBool("SMTP_TLS", true),
		},
		Geo: GeoConfig{
			BaseURL: strings.TrimRight(getEnv("GEO_LOOKUP_URL", "http://ip-api.com/json"), "/"),
			Timeout: getEnvAsDuration("GEO_LOOKUP_TIMEOUT", 3*time.Second),
		},
		Site: SiteDefaults{
			Title:             getEnv("SITE_TITLE", "Multi-Family Portal"),
			LegalBusinessName: getEnv("SITE_LEGAL_BUSINESS_NAME", "Multi-Family Portal LLC"),
			Address:           getEnv("SITE_ADDRESS", ""),
			City:              getEnv("SITE_CITY", ""),
			State:             getEnv("SITE_STATE", ""),
			PostalCode:        getEnv("SITE_POSTAL_CODE", ""),
			PublicEmail:       publicEmail,
			NotificationEmail: getEnv("SITE_NOTIFICATION_EMAIL", publicEmail),
		},
	}
}

// DSN 返回当前驱动对应的连接串。
func (c AppConfig) DSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseDSN
	}
	return c.DatabasePath
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getEnvAsSlice 读取逗号分隔的列表，忽略空项
func getEnvAsSlice(key string) []string {
	var result []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
