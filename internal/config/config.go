package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	GinMode           string
	LogLevel          string
	DatabaseURL       string
	JWTSecret         string
	TokenTTL          time.Duration
	DefaultAuthor     string
	SuperRootUserName string
	SuperRootPassword string

	Storage   StorageConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// StorageConfig selects where uploaded media bytes are written.
type StorageConfig struct {
	Driver         string
	UploadDir      string
	UploadURLPath  string
	MaxUploadBytes int64

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	S3UsePathStyle    bool
}

// RateLimitConfig is a per client IP token bucket for the /api group.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// TelemetryConfig controls trace export. An empty endpoint disables export.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// DevJWTSecret 仅用于本地调试，release 模式下拒绝使用。
const DevJWTSecret = "pan-logistics-dev-secret"

const (
	StorageDriverFS = "fs"
	StorageDriverS3 = "s3"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "data/blog.db")
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("DEFAULT_AUTHOR", "Pan Logistics")
	v.SetDefault("STORAGE_DRIVER", StorageDriverFS)
	v.SetDefault("UPLOAD_DIR", "web/static/uploads")
	v.SetDefault("UPLOAD_URL_PATH", "/static/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("RATE_LIMIT_RPS", 100.0/(15*60))
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SERVICE_NAME", "pan-logistics-blog")
}

// Load 从环境变量（以及可选的 CONFIG_FILE）读取应用配置，并为缺失项提供默认值。release 模式必须显式配置 JWT_SECRET。
func Load() (AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (AppConfig, error) {
	port := strings.TrimSpace(v.GetString("PORT"))
	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("TOKEN_TTL")))
	if err != nil || ttl <= 0 {
		return AppConfig{}, fmt.Errorf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER")))
	if driver != StorageDriverFS && driver != StorageDriverS3 {
		return AppConfig{}, fmt.Errorf("unsupported STORAGE_DRIVER %q (use fs or s3)", driver)
	}

	cfg := AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		GinMode:           strings.TrimSpace(v.GetString("GIN_MODE")),
		LogLevel:          strings.TrimSpace(v.GetString("LOG_LEVEL")),
		DatabaseURL:       strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(v.GetString("JWT_SECRET")),
		TokenTTL:          ttl,
		DefaultAuthor:     strings.TrimSpace(v.GetString("DEFAULT_AUTHOR")),
		SuperRootUserName: strings.TrimSpace(v.GetString("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(v.GetString("SUPER_ROOT_PASSWORD")),
		Storage: StorageConfig{
			Driver:            driver,
			UploadDir:         strings.TrimSpace(v.GetString("UPLOAD_DIR")),
			UploadURLPath:     strings.TrimSpace(v.GetString("UPLOAD_URL_PATH")),
			MaxUploadBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
			S3Bucket:          strings.TrimSpace(v.GetString("S3_BUCKET")),
			S3Region:          strings.TrimSpace(v.GetString("S3_REGION")),
			S3Endpoint:        strings.TrimSpace(v.GetString("S3_ENDPOINT")),
			S3AccessKeyID:     strings.TrimSpace(v.GetString("S3_ACCESS_KEY_ID")),
			S3SecretAccessKey: strings.TrimSpace(v.GetString("S3_SECRET_ACCESS_KEY")),
			S3PublicBaseURL:   strings.TrimSpace(v.GetString("S3_PUBLIC_BASE_URL")),
			S3UsePathStyle:    v.GetBool("S3_USE_PATH_STYLE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
			ServiceName:  strings.TrimSpace(v.GetString("SERVICE_NAME")),
		},
	}

	if strings.EqualFold(cfg.GinMode, "release") && (cfg.JWTSecret == "" || cfg.JWTSecret == DevJWTSecret) {
		return AppConfig{}, fmt.Errorf("JWT_SECRET must be set to a non-default value when GIN_MODE=release")
	}

	if cfg.Storage.Driver == StorageDriverS3 && cfg.Storage.S3Bucket == "" {
		return AppConfig{}, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
	}

	return cfg, nil
}
