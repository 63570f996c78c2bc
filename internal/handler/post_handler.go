package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/panlogistics/blog/internal/logger"
	"github.com/panlogistics/blog/internal/service"
)

type createPostRequest struct {
	Title           string     `json:"title" binding:"required,max=255"`
	Slug            string     `json:"slug" binding:"omitempty,max=255"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	ContentHTML     string     `json:"content_html"`
	Author          string     `json:"author" binding:"max=120"`
	Category        string     `json:"category" binding:"max=120"`
	Tags            []string   `json:"tags"`
	FeaturedImage   string     `json:"featured_image" binding:"max=512"`
	Status          string     `json:"status" binding:"omitempty,oneof=draft scheduled published"`
	MetaTitle       string     `json:"meta_title" binding:"max=255"`
	MetaDescription string     `json:"meta_description"`
	FocusKeyword    string     `json:"focus_keyword" binding:"max=120"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	AllowComments   *bool      `json:"allow_comments"`
	IsFeatured      bool       `json:"is_featured"`
	IsSticky        bool       `json:"is_sticky"`
}

// updatePostRequest 中缺省字段保持原值，显式传入空字符串的 excerpt 等字段会被清空。
type updatePostRequest struct {
	Title           *string    `json:"title" binding:"omitempty,max=255"`
	Slug            *string    `json:"slug" binding:"omitempty,max=255"`
	Excerpt         *string    `json:"excerpt"`
	Content         *string    `json:"content"`
	ContentHTML     *string    `json:"content_html"`
	Author          *string    `json:"author" binding:"omitempty,max=120"`
	Category        *string    `json:"category" binding:"omitempty,max=120"`
	Tags            *[]string  `json:"tags"`
	FeaturedImage   *string    `json:"featured_image" binding:"omitempty,max=512"`
	Status          *string    `json:"status" binding:"omitempty,oneof=draft scheduled published"`
	MetaTitle       *string    `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription *string    `json:"meta_description"`
	FocusKeyword    *string    `json:"focus_keyword" binding:"omitempty,max=120"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	AllowComments   *bool      `json:"allow_comments"`
	IsFeatured      *bool      `json:"is_featured"`
	IsSticky        *bool      `json:"is_sticky"`
	ChangeSummary   string     `json:"change_summary" binding:"max=255"`
}

// ListPublishedPosts 返回公开文章列表。preview 仅对携带后台令牌的请求生效。
func (a *API) ListPublishedPosts(c *gin.Context) {
	preview := parseBoolQuery(c, "preview") && isStaffRequest(c)

	posts, err := a.posts.ListPublished(c.Request.Context(), parseIntQuery(c, "limit"), parseBoolQuery(c, "featured"), preview)
	if err != nil {
		respondFailure(c, err, "Failed to fetch posts")
		return
	}
	respondOK(c, posts)
}

// GetPublishedPost 按 slug 返回文章，非预览请求会累加浏览量。
func (a *API) GetPublishedPost(c *gin.Context) {
	preview := parseBoolQuery(c, "preview") && isStaffRequest(c)

	post, err := a.posts.GetBySlug(c.Request.Context(), c.Param("slug"), preview)
	if err != nil {
		respondFailure(c, err, "Failed to fetch post")
		return
	}

	if !preview {
		if err := a.posts.IncrementViews(c.Request.Context(), post.ID); err != nil {
			logger.Warn("failed to increment post views", zap.Uint("post_id", post.ID), zap.Error(err))
		}
	}
	respondOK(c, post)
}

// ListPosts 后台文章列表，支持分页、筛选、搜索与排序。
func (a *API) ListPosts(c *gin.Context) {
	filter := service.PostFilter{
		Page:      parseIntQuery(c, "page"),
		Limit:     parseIntQuery(c, "limit"),
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Featured:  parseBoolQuery(c, "featured"),
		Search:    c.Query("search"),
		SortBy:    firstQuery(c, "sortBy", "sort_by"),
		SortOrder: firstQuery(c, "sortOrder", "sort_order"),
	}

	result, err := a.posts.List(c.Request.Context(), filter)
	if err != nil {
		respondFailure(c, err, "Failed to fetch posts")
		return
	}
	respondPage(c, result.Posts, result.Pagination)
}

// GetPost returns a post by id regardless of status.
func (a *API) GetPost(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err, "Failed to fetch post")
		return
	}
	respondOK(c, post)
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := a.posts.Create(c.Request.Context(), service.PostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		ContentHTML:     req.ContentHTML,
		Author:          req.Author,
		Category:        req.Category,
		Tags:            req.Tags,
		FeaturedImage:   req.FeaturedImage,
		Status:          req.Status,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		FocusKeyword:    req.FocusKeyword,
		ScheduledAt:     req.ScheduledAt,
		AllowComments:   req.AllowComments,
		IsFeatured:      req.IsFeatured,
		IsSticky:        req.IsSticky,
		CreatedBy:       currentUserID(c),
	})
	if err != nil {
		respondFailure(c, err, "Failed to create post")
		return
	}
	respondCreated(c, post, "Post created successfully")
}

// UpdatePost 更新文章，内容变化时会先写入一条修订记录。
func (a *API) UpdatePost(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req updatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := a.posts.Update(c.Request.Context(), id, service.PostPatch{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		ContentHTML:     req.ContentHTML,
		Author:          req.Author,
		Category:        req.Category,
		Tags:            req.Tags,
		FeaturedImage:   req.FeaturedImage,
		Status:          req.Status,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		FocusKeyword:    req.FocusKeyword,
		ScheduledAt:     req.ScheduledAt,
		AllowComments:   req.AllowComments,
		IsFeatured:      req.IsFeatured,
		IsSticky:        req.IsSticky,
		ChangeSummary:   req.ChangeSummary,
	}, currentUserID(c))
	if err != nil {
		respondFailure(c, err, "Failed to update post")
		return
	}
	respondUpdated(c, post, "Post updated successfully")
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		respondFailure(c, err, "Failed to delete post")
		return
	}
	respondMessage(c, "Post deleted successfully")
}

// ListRevisions returns a post's revision history, newest first.
func (a *API) ListRevisions(c *gin.Context) {
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	revisions, err := a.posts.Revisions(c.Request.Context(), postID)
	if err != nil {
		respondFailure(c, err, "Failed to fetch revisions")
		return
	}
	respondOK(c, revisions)
}

// RestoreRevision 将文章回滚到指定修订版本。
func (a *API) RestoreRevision(c *gin.Context) {
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	revisionID, ok := parseUintParam(c, "revisionId")
	if !ok {
		return
	}

	post, err := a.posts.RestoreRevision(c.Request.Context(), postID, revisionID, currentUserID(c))
	if err != nil {
		respondFailure(c, err, "Failed to restore revision")
		return
	}
	respondUpdated(c, post, "Revision restored successfully")
}

// GetAnalytics 返回实时统计的文章数据。
func (a *API) GetAnalytics(c *gin.Context) {
	stats, err := a.posts.Analytics(c.Request.Context())
	if err != nil {
		respondFailure(c, err, "Failed to fetch analytics")
		return
	}
	respondOK(c, stats)
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if value := c.Query(key); value != "" {
			return value
		}
	}
	return ""
}
