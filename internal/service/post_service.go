package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/panlogistics/blog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidStatus    = errors.New("invalid post status")
	ErrScheduleRequired = errors.New("scheduled posts require scheduled_at")
)

const (
	DefaultAuthor = "Pan Logistics"

	defaultPostLimit = 10
	maxPostLimit     = 100
	topPostsLimit    = 5
	maxSlugAttempts  = 5
)

var postSortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"title":        "title",
	"views_count":  "views_count",
}

// PostService wraps post related database operations.
type PostService struct {
	db            *gorm.DB
	now           func() time.Time
	defaultAuthor string
}

// PostFilter describes filters for the admin listing.
type PostFilter struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	Featured  bool
	Search    string
	SortBy    string
	SortOrder string
}

// PostListResult aggregates a page of posts with its pagination envelope.
type PostListResult struct {
	Posts      []db.Post
	Pagination Pagination
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	ContentHTML     string
	Author          string
	Category        string
	Tags            []string
	FeaturedImage   string
	Status          string
	MetaTitle       string
	MetaDescription string
	FocusKeyword    string
	ScheduledAt     *time.Time
	AllowComments   *bool
	IsFeatured      bool
	IsSticky        bool
	CreatedBy       *uint
}

// PostPatch carries a partial update. nil fields are left untouched; empty
// title, slug, content, author and status are treated as absent as well.
type PostPatch struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	Content         *string
	ContentHTML     *string
	Author          *string
	Category        *string
	Tags            *[]string
	FeaturedImage   *string
	Status          *string
	MetaTitle       *string
	MetaDescription *string
	FocusKeyword    *string
	ScheduledAt     *time.Time
	AllowComments   *bool
	IsFeatured      *bool
	IsSticky        *bool
	ChangeSummary   string
}

// TopPost is a single row of the analytics leaderboard.
type TopPost struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	ViewsCount uint64 `json:"views_count"`
}

// Analytics 汇总文章数量与浏览量，每次调用都实时计算。
type Analytics struct {
	TotalPosts     int64     `json:"totalPosts"`
	PublishedPosts int64     `json:"publishedPosts"`
	DraftPosts     int64     `json:"draftPosts"`
	ScheduledPosts int64     `json:"scheduledPosts"`
	TotalViews     uint64    `json:"totalViews"`
	TopPosts       []TopPost `json:"topPosts"`
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{
		db:            gdb,
		now:           func() time.Time { return time.Now().UTC() },
		defaultAuthor: DefaultAuthor,
	}
}

// WithClock 允许在测试中注入固定时间。
func (s *PostService) WithClock(now func() time.Time) *PostService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// WithDefaultAuthor overrides the author label used when none is supplied.
func (s *PostService) WithDefaultAuthor(author string) *PostService {
	if trimmed := strings.TrimSpace(author); trimmed != "" {
		s.defaultAuthor = trimmed
	}
	return s
}

// Create persists a new post with a unique slug.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = db.PostStatusDraft
	}
	if !db.ValidPostStatus(status) {
		return nil, ErrInvalidStatus
	}
	if status == db.PostStatusScheduled && input.ScheduledAt == nil {
		return nil, ErrScheduleRequired
	}

	contentHTML, err := resolveContentHTML(input.Content, &input.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = summarizeContent(input.Content)
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = s.defaultAuthor
	}

	allowComments := true
	if input.AllowComments != nil {
		allowComments = *input.AllowComments
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	post := db.Post{
		Title:           title,
		Excerpt:         excerpt,
		Content:         input.Content,
		ContentHTML:     contentHTML,
		Author:          author,
		Category:        strings.TrimSpace(input.Category),
		Tags:            tags,
		FeaturedImage:   strings.TrimSpace(input.FeaturedImage),
		Status:          status,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		FocusKeyword:    input.FocusKeyword,
		ScheduledAt:     input.ScheduledAt,
		AllowComments:   allowComments,
		IsFeatured:      input.IsFeatured,
		IsSticky:        input.IsSticky,
		CreatedBy:       input.CreatedBy,
	}
	if status == db.PostStatusPublished {
		now := s.now()
		post.PublishedAt = &now
	}

	base := input.Slug
	if strings.TrimSpace(base) == "" {
		base = title
	}

	if err := s.insertWithUniqueSlug(ctx, &post, Slugify(base)); err != nil {
		return nil, err
	}
	return &post, nil
}

// insertWithUniqueSlug probes base, base-1, base-2 … and inserts the post.
// The unique index is the arbiter: a conflicting insert resumes the probe.
func (s *PostService) insertWithUniqueSlug(ctx context.Context, post *db.Post, base string) error {
	next := 0
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate, n, err := s.probeSlug(ctx, base, next)
		if err != nil {
			return err
		}

		post.ID = 0
		post.Slug = candidate
		err = s.db.WithContext(ctx).Create(post).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		next = n + 1
	}
	return ErrSlugTaken
}

func (s *PostService) probeSlug(ctx context.Context, base string, from int) (string, int, error) {
	for n := from; ; n++ {
		candidate := slugCandidate(base, n)
		var count int64
		if err := s.db.WithContext(ctx).Model(&db.Post{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", 0, err
		}
		if count == 0 {
			return candidate, n, nil
		}
	}
}

// List provides the filtered, sorted and paginated admin listing.
func (s *PostService) List(ctx context.Context, filter PostFilter) (*PostListResult, error) {
	page := normalizePage(filter.Page)
	limit := normalizeLimit(filter.Limit, defaultPostLimit, maxPostLimit)

	var total int64
	if err := s.applyFilters(s.db.WithContext(ctx).Model(&db.Post{}), filter).Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := postSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(filter.SortOrder, "asc")

	var posts []db.Post
	if err := s.applyFilters(s.db.WithContext(ctx).Model(&db.Post{}), filter).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return &PostListResult{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if status := strings.TrimSpace(filter.Status); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if category := strings.TrimSpace(filter.Category); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?)", pattern, pattern, pattern)
	}
	return query
}

// publicScope 仅保留已发布且发布时间不晚于当前时间的文章。
func (s *PostService) publicScope(query *gorm.DB) *gorm.DB {
	return query.Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", db.PostStatusPublished, s.now())
}

// ListPublished returns the newest published posts. preview drops the visibility filter.
func (s *PostService) ListPublished(ctx context.Context, limit int, featured, preview bool) ([]db.Post, error) {
	limit = normalizeLimit(limit, defaultPostLimit, maxPostLimit)

	query := s.db.WithContext(ctx).Model(&db.Post{})
	if !preview {
		query = s.publicScope(query)
	}
	if featured {
		query = query.Where("is_featured = ?", true)
	}

	var posts []db.Post
	// 预览时草稿没有 published_at，按创建时间参与排序，避免各数据库 NULL 排序不一致
	if err := query.Order("COALESCE(published_at, created_at) desc").Order("id desc").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBySlug fetches a single post under the same visibility rule as ListPublished.
func (s *PostService) GetBySlug(ctx context.Context, slug string, preview bool) (*db.Post, error) {
	query := s.db.WithContext(ctx).Where("slug = ?", slug)
	if !preview {
		query = s.publicScope(query)
	}

	var post db.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Get fetches a post by id regardless of status.
func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Update applies a partial update. A changed body snapshots the previous
// state as a revision; both writes share one transaction.
func (s *PostService) Update(ctx context.Context, id uint, patch PostPatch, userID *uint) (*db.Post, error) {
	return s.update(ctx, id, userID, patch.ChangeSummary, false, patch.apply)
}

// RestoreRevision copies a revision's title and body back onto its post.
// The pre-restore state is always snapshotted first.
func (s *PostService) RestoreRevision(ctx context.Context, postID, revisionID uint, userID *uint) (*db.Post, error) {
	var revision db.Revision
	if err := s.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", revisionID, postID).
		First(&revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRevisionNotFound
		}
		return nil, err
	}

	summary := fmt.Sprintf("Restored from revision %d", revision.RevisionNumber)
	return s.update(ctx, postID, userID, summary, true, func(post *db.Post, _ time.Time) (bool, error) {
		contentHTML := revision.ContentHTML
		if strings.TrimSpace(contentHTML) == "" {
			rendered, err := RenderMarkdown(revision.Content)
			if err != nil {
				return false, fmt.Errorf("render content: %w", err)
			}
			contentHTML = rendered
		}

		changed := post.Content != revision.Content
		post.Title = revision.Title
		post.Content = revision.Content
		post.ContentHTML = contentHTML
		return changed, nil
	})
}

type postMutation func(post *db.Post, now time.Time) (contentChanged bool, err error)

func (s *PostService) update(ctx context.Context, id uint, userID *uint, summary string, forceRevision bool, mutate postMutation) (*db.Post, error) {
	var post db.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		before := post
		now := s.now()
		contentChanged, err := mutate(&post, now)
		if err != nil {
			return err
		}

		if post.Status == db.PostStatusScheduled && post.ScheduledAt == nil {
			return ErrScheduleRequired
		}
		if post.Status == db.PostStatusPublished && post.PublishedAt == nil {
			post.PublishedAt = &now
		}

		if contentChanged || forceRevision {
			revision := db.Revision{
				PostID:         before.ID,
				Title:          before.Title,
				Content:        before.Content,
				ContentHTML:    before.ContentHTML,
				RevisionNumber: before.RevisionNumber + 1,
				ChangedBy:      userID,
				ChangeSummary:  summary,
			}
			if err := tx.Create(&revision).Error; err != nil {
				return fmt.Errorf("create revision: %w", err)
			}
			post.RevisionNumber = revision.RevisionNumber
		}

		// views_count 只由 IncrementViews 原子递增
		if err := tx.Omit("views_count").Save(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlugTaken
			}
			return err
		}
		return tx.First(&post, post.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// apply 将补丁写入文章，返回正文是否发生变化。
func (p PostPatch) apply(post *db.Post, _ time.Time) (bool, error) {
	if v := trimmedValue(p.Title); v != "" {
		post.Title = v
	}
	if v := trimmedValue(p.Slug); v != "" {
		post.Slug = Slugify(v)
	}
	if p.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*p.Excerpt)
	}

	contentChanged := false
	if p.Content != nil && *p.Content != "" && *p.Content != post.Content {
		post.Content = *p.Content
		contentChanged = true
	}

	switch {
	case p.ContentHTML != nil && strings.TrimSpace(*p.ContentHTML) != "":
		post.ContentHTML = SanitizeHTML(*p.ContentHTML)
	case p.ContentHTML != nil || contentChanged:
		rendered, err := RenderMarkdown(post.Content)
		if err != nil {
			return false, fmt.Errorf("render content: %w", err)
		}
		post.ContentHTML = rendered
	}

	if v := trimmedValue(p.Author); v != "" {
		post.Author = v
	}
	if p.Category != nil {
		post.Category = strings.TrimSpace(*p.Category)
	}
	if p.Tags != nil {
		post.Tags = *p.Tags
		if post.Tags == nil {
			post.Tags = []string{}
		}
	}
	if p.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*p.FeaturedImage)
	}
	if v := trimmedValue(p.Status); v != "" {
		if !db.ValidPostStatus(v) {
			return false, ErrInvalidStatus
		}
		post.Status = v
	}
	if p.MetaTitle != nil {
		post.MetaTitle = *p.MetaTitle
	}
	if p.MetaDescription != nil {
		post.MetaDescription = *p.MetaDescription
	}
	if p.FocusKeyword != nil {
		post.FocusKeyword = *p.FocusKeyword
	}
	if p.ScheduledAt != nil {
		scheduled := *p.ScheduledAt
		post.ScheduledAt = &scheduled
	}
	if p.AllowComments != nil {
		post.AllowComments = *p.AllowComments
	}
	if p.IsFeatured != nil {
		post.IsFeatured = *p.IsFeatured
	}
	if p.IsSticky != nil {
		post.IsSticky = *p.IsSticky
	}

	return contentChanged, nil
}

func trimmedValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// Delete removes a post. Its revisions and comments are left in place.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Revisions lists a post's revision history, newest first.
func (s *PostService) Revisions(ctx context.Context, postID uint) ([]db.Revision, error) {
	var revisions []db.Revision
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("revision_number desc").
		Find(&revisions).Error; err != nil {
		return nil, err
	}
	return revisions, nil
}

// IncrementViews bumps the view counter in a single UPDATE statement.
func (s *PostService) IncrementViews(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Analytics computes post counters and the most viewed posts.
func (s *PostService) Analytics(ctx context.Context) (*Analytics, error) {
	stats := &Analytics{TopPosts: []TopPost{}}

	if err := s.db.WithContext(ctx).Model(&db.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, err
	}

	counters := []struct {
		status string
		dst    *int64
	}{
		{db.PostStatusPublished, &stats.PublishedPosts},
		{db.PostStatusDraft, &stats.DraftPosts},
		{db.PostStatusScheduled, &stats.ScheduledPosts},
	}
	for _, counter := range counters {
		if err := s.db.WithContext(ctx).Model(&db.Post{}).
			Where("status = ?", counter.status).
			Count(counter.dst).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(&db.Post{}).
		Select("COALESCE(SUM(views_count), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&db.Post{}).
		Select("id, title, slug, views_count").
		Order("views_count desc").
		Order("id asc").
		Limit(topPostsLimit).
		Scan(&stats.TopPosts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
