package db

import "time"

// Media 描述媒体库中的一个文件。
// StorageKey 为空表示只登记了外部 URL，文件本身不由本服务保存。
type Media struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;index;not null" json:"filename"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	MimeType     string    `gorm:"size:120;index" json:"mime_type"`
	Size         int64     `json:"size"`
	URL          string    `gorm:"size:1024" json:"url"`
	StorageKey   string    `gorm:"size:255" json:"storage_key,omitempty"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	UploadedBy   *uint     `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定自定义表名。
func (Media) TableName() string {
	return "blog_media"
}
