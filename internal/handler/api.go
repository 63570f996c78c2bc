package handler

import (
	"github.com/panlogistics/blog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	taxonomy *service.TaxonomyService
	media    *service.MediaService
	comments *service.CommentService
	auth     *service.AuthService
}

// Services 允许调用方（main 与测试）注入已配置好的服务实例。
type Services struct {
	Posts    *service.PostService
	Taxonomy *service.TaxonomyService
	Media    *service.MediaService
	Comments *service.CommentService
	Auth     *service.AuthService
}

// NewAPI constructs a handler set. Services left nil are built with defaults.
func NewAPI(db *gorm.DB, services Services) *API {
	registerValidators()

	api := &API{
		db:       db,
		posts:    services.Posts,
		taxonomy: services.Taxonomy,
		media:    services.Media,
		comments: services.Comments,
		auth:     services.Auth,
	}
	if api.posts == nil {
		api.posts = service.NewPostService(db)
	}
	if api.taxonomy == nil {
		api.taxonomy = service.NewTaxonomyService(db)
	}
	if api.media == nil {
		api.media = service.NewMediaService(db, nil, 0)
	}
	if api.comments == nil {
		api.comments = service.NewCommentService(db)
	}
	if api.auth == nil {
		api.auth = service.NewAuthService(db, "", 0)
	}
	return api
}

// DB exposes the underlying gorm instance for the health probe.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Auth exposes the token service for the router middleware.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
