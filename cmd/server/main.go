package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/panlogistics/blog/internal/config"
	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/handler"
	"github.com/panlogistics/blog/internal/logger"
	"github.com/panlogistics/blog/internal/router"
	"github.com/panlogistics/blog/internal/service"
	"github.com/panlogistics/blog/internal/storage"
	"github.com/panlogistics/blog/internal/storage/fs"
	"github.com/panlogistics/blog/internal/storage/s3"
	"github.com/panlogistics/blog/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if _, err := logger.Init(cfg.GinMode, cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx := context.Background()

	serviceName := ""
	if cfg.Telemetry.OTLPEndpoint != "" {
		serviceName = cfg.Telemetry.ServiceName
	}
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		logger.Error("failed to initialize tracing", zap.Error(err))
		serviceName = ""
	}

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabaseURL, gormLogLevel(cfg.GinMode))
	if err != nil {
		logger.L().Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		logger.L().Fatal("failed to ensure admin user", zap.Error(err))
	}

	store, uploadDir, err := buildBlobStore(ctx, cfg.Storage)
	if err != nil {
		logger.L().Fatal("failed to initialize media storage", zap.Error(err))
	}

	api := handler.NewAPI(gdb, handler.Services{
		Posts: service.NewPostService(gdb).WithDefaultAuthor(cfg.DefaultAuthor),
		Media: service.NewMediaService(gdb, store, cfg.Storage.MaxUploadBytes),
		Auth:  service.NewAuthService(gdb, cfg.JWTSecret, cfg.TokenTTL),
	})

	// 设置 Gin 路由
	r := router.SetupRouter(router.Options{
		API:            api,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		UploadDir:      uploadDir,
		UploadURLPath:  cfg.Storage.UploadURLPath,
		ServiceName:    serviceName,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("blog server starting",
			zap.String("addr", cfg.ListenAddr),
			zap.String("storage", store.Name()),
			zap.Bool("postgres", db.IsPostgresURL(cfg.DatabaseURL)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}

// buildBlobStore 根据 STORAGE_DRIVER 选择上传后端，fs 后端同时返回需要静态托管的目录。
func buildBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, string, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		backend, err := s3.New(ctx, s3.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return backend, "", nil
	default:
		backend, err := fs.New(fs.Config{BaseDir: cfg.UploadDir, URLPath: cfg.UploadURLPath})
		if err != nil {
			return nil, "", err
		}
		return backend, cfg.UploadDir, nil
	}
}

func gormLogLevel(ginMode string) gormlogger.LogLevel {
	if strings.EqualFold(ginMode, gin.DebugMode) {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
