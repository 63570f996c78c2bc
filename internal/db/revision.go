package db

import "time"

// Revision 记录文章内容在某次编辑之前的快照，创建后不再修改。
// RevisionNumber 与快照时文章的 revision_number 计数一致，同一文章内唯一。
type Revision struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PostID         uint      `gorm:"not null;uniqueIndex:idx_revision_post_number" json:"post_id"`
	Title          string    `gorm:"size:255" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	ContentHTML    string    `gorm:"type:text" json:"content_html"`
	RevisionNumber int       `gorm:"not null;uniqueIndex:idx_revision_post_number" json:"revision_number"`
	ChangedBy      *uint     `json:"changed_by"`
	ChangeSummary  string    `gorm:"type:text" json:"change_summary"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定自定义表名。
func (Revision) TableName() string {
	return "blog_revisions"
}
