package db

import "time"

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusSpam     = "spam"
)

// ValidCommentStatus reports whether status is a known moderation state.
func ValidCommentStatus(status string) bool {
	switch status {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return true
	}
	return false
}

// Comment 属于某一篇文章，删除文章时不会级联删除评论。
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	AuthorName  string    `gorm:"size:120;not null" json:"author_name"`
	AuthorEmail string    `gorm:"size:255" json:"author_email"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Status      string    `gorm:"size:20;index;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定自定义表名。
func (Comment) TableName() string {
	return "blog_comments"
}
