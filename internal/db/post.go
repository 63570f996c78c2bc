package db

import "time"

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// ValidPostStatus reports whether status belongs to the post lifecycle.
func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished:
		return true
	}
	return false
}

// Post 定义了博客文章模型
// Tags 以 JSON 数组保存，按值引用 blog_tags，不建立外键。
// PublishedAt 只在第一次进入 published 状态时写入。
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Slug            string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt         string     `gorm:"type:text" json:"excerpt"`
	Content         string     `gorm:"type:text" json:"content"`
	ContentHTML     string     `gorm:"type:text" json:"content_html"`
	Author          string     `gorm:"size:120" json:"author"`
	Category        string     `gorm:"size:120;index" json:"category"`
	Tags            []string   `gorm:"type:text;serializer:json" json:"tags"`
	FeaturedImage   string     `gorm:"size:512" json:"featured_image"`
	Status          string     `gorm:"size:20;index;not null" json:"status"`
	MetaTitle       string     `gorm:"size:255" json:"meta_title"`
	MetaDescription string     `gorm:"type:text" json:"meta_description"`
	FocusKeyword    string     `gorm:"size:120" json:"focus_keyword"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	PublishedAt     *time.Time `gorm:"index" json:"published_at"`
	ViewsCount      uint64     `gorm:"not null" json:"views_count"`
	AllowComments   bool       `json:"allow_comments"`
	IsFeatured      bool       `gorm:"index" json:"is_featured"`
	IsSticky        bool       `json:"is_sticky"`
	RevisionNumber  int        `gorm:"not null" json:"revision_number"`
	CreatedBy       *uint      `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 指定自定义表名。
func (Post) TableName() string {
	return "blog_posts"
}
