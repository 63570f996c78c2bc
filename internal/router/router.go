package router

import (
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/panlogistics/blog/internal/handler"
)

// Options 汇总构建路由所需的依赖与开关。
type Options struct {
	API *handler.API

	// RateLimitRPS 为 0 时不启用 /api 限流。
	RateLimitRPS   float64
	RateLimitBurst int

	// UploadDir 非空时在 UploadURLPath 下提供本地上传文件。
	UploadDir     string
	UploadURLPath string

	// ServiceName 非空时启用 otelgin 链路追踪。
	ServiceName string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(handler.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	if dir := strings.TrimSpace(opts.UploadDir); dir != "" {
		urlPath := strings.TrimSpace(opts.UploadURLPath)
		if urlPath == "" {
			urlPath = "/static/uploads"
		}
		r.Static(urlPath, dir)
	}

	api := opts.API
	apiGroup := r.Group("/api")
	if opts.RateLimitRPS > 0 {
		apiGroup.Use(handler.NewIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware())
	}

	apiGroup.GET("/health", api.HealthCheck)
	apiGroup.POST("/auth/login", api.Login)

	// 公开博客路由
	blog := apiGroup.Group("/blog")
	{
		blog.GET("/", api.OptionalAuth(), api.ListPublishedPosts)
		blog.GET("/post/:slug", api.OptionalAuth(), api.GetPublishedPost)
		blog.POST("/post/:slug/comments", api.SubmitComment)
		blog.GET("/categories", api.ListCategories)
		blog.GET("/tags", api.ListTags)
	}

	// 后台路由，需要 staff 令牌
	admin := blog.Group("/admin")
	admin.Use(api.Authenticate(), api.RequireStaff())
	{
		admin.GET("/posts", api.ListPosts)
		admin.GET("/post/:id", api.GetPost)
		admin.POST("/posts", api.CreatePost)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)

		admin.GET("/posts/:id/revisions", api.ListRevisions)
		admin.POST("/posts/:id/revisions/:revisionId/restore", api.RestoreRevision)
		admin.GET("/posts/:id/comments", api.ListComments)

		admin.GET("/analytics", api.GetAnalytics)

		admin.GET("/media", api.ListMedia)
		admin.POST("/media", api.CreateMedia)
		admin.POST("/media/upload", api.UploadMedia)
		admin.DELETE("/media/:id", api.DeleteMedia)

		admin.PUT("/comments/:commentId", api.UpdateComment)
		admin.DELETE("/comments/:commentId", api.DeleteComment)

		admin.GET("/categories/used", api.ListUsedCategories)
		admin.POST("/categories", api.CreateCategory)
		admin.DELETE("/categories/:id", api.DeleteCategory)
		admin.POST("/tags", api.CreateTag)
		admin.DELETE("/tags/:id", api.DeleteTag)
	}

	return r
}
