package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/panlogistics/blog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrCommentsClosed       = errors.New("comments are closed for this post")
	ErrCommentInvalid       = errors.New("author name and content are required")
	ErrInvalidCommentStatus = errors.New("invalid comment status")
)

// CommentService wraps comment submission and moderation.
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

// CommentInput represents a public comment submission.
type CommentInput struct {
	AuthorName  string
	AuthorEmail string
	Content     string
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock 允许在测试中注入固定时间。
func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	if now != nil {
		s.now = now
	}
	return s
}

// ListForPost returns a post's comments, newest first. status "all" or empty means any.
func (s *CommentService) ListForPost(ctx context.Context, postID uint, status string) ([]db.Comment, error) {
	query := s.db.WithContext(ctx).Where("post_id = ?", postID)
	if trimmed := strings.TrimSpace(status); trimmed != "" && trimmed != "all" {
		query = query.Where("status = ?", trimmed)
	}

	var comments []db.Comment
	if err := query.Order("created_at desc").Order("id desc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create 为已发布且允许评论的文章提交一条待审核评论。
func (s *CommentService) Create(ctx context.Context, slug string, input CommentInput) (*db.Comment, error) {
	name := strings.TrimSpace(input.AuthorName)
	content := strings.TrimSpace(input.Content)
	if name == "" || content == "" {
		return nil, ErrCommentInvalid
	}

	var post db.Post
	if err := s.db.WithContext(ctx).
		Where("slug = ? AND status = ? AND published_at IS NOT NULL AND published_at <= ?", slug, db.PostStatusPublished, s.now()).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.AllowComments {
		return nil, ErrCommentsClosed
	}

	comment := db.Comment{
		PostID:      post.ID,
		AuthorName:  name,
		AuthorEmail: strings.TrimSpace(input.AuthorEmail),
		Content:     content,
		Status:      db.CommentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateStatus sets the moderation status of a comment.
func (s *CommentService) UpdateStatus(ctx context.Context, id uint, status string) (*db.Comment, error) {
	status = strings.TrimSpace(status)
	if !db.ValidCommentStatus(status) {
		return nil, ErrInvalidCommentStatus
	}

	var comment db.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	comment.Status = status
	if err := s.db.WithContext(ctx).Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
