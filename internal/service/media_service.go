package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"

	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/logger"
	"github.com/panlogistics/blog/internal/storage"
)

var (
	ErrMediaNotFound      = errors.New("media not found")
	ErrMediaInvalid       = errors.New("filename and url are required")
	ErrMediaTooLarge      = errors.New("file exceeds the upload size limit")
	ErrMediaEmpty         = errors.New("uploaded file is empty")
	ErrStorageUnavailable = errors.New("media storage is not configured")
	ErrMediaType          = errors.New("file type is not allowed")
)

// allowedUploadExtensions 上传文件会被直接静态托管，只接受以下扩展名。
var allowedUploadExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
	".txt":  true,
	".csv":  true,
	".mp4":  true,
	".webm": true,
}

const (
	defaultMediaLimit = 20
	maxMediaLimit     = 100
)

// MediaService wraps the media library and its blob storage.
type MediaService struct {
	db       *gorm.DB
	store    storage.BlobStore
	maxBytes int64
	now      func() time.Time
}

// MediaFilter describes filters for the media library listing.
type MediaFilter struct {
	Page   int
	Limit  int
	Search string
	Type   string
}

// MediaListResult aggregates a page of media with its pagination envelope.
type MediaListResult struct {
	Media      []db.Media
	Pagination Pagination
}

// MediaInput registers a file that already lives elsewhere.
type MediaInput struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	URL          string
	Width        int
	Height       int
	UploadedBy   *uint
}

// UploadInput describes bytes to be stored through the blob store.
type UploadInput struct {
	Reader       io.Reader
	OriginalName string
	Size         int64
	UploadedBy   *uint
}

// NewMediaService creates a MediaService. store may be nil, which disables uploads.
func NewMediaService(gdb *gorm.DB, store storage.BlobStore, maxBytes int64) *MediaService {
	return &MediaService{
		db:       gdb,
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// MaxBytes reports the configured upload limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// StorageName reports the blob backend name, empty when uploads are disabled.
func (s *MediaService) StorageName() string {
	if s.store == nil {
		return ""
	}
	return s.store.Name()
}

// List returns the media library, newest first.
func (s *MediaService) List(ctx context.Context, filter MediaFilter) (*MediaListResult, error) {
	page := normalizePage(filter.Page)
	limit := normalizeLimit(filter.Limit, defaultMediaLimit, maxMediaLimit)

	apply := func(query *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			query = query.Where("LOWER(filename) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		if mediaType := strings.TrimSpace(filter.Type); mediaType != "" {
			query = query.Where("mime_type LIKE ?", mediaType+"%")
		}
		return query
	}

	var total int64
	if err := apply(s.db.WithContext(ctx).Model(&db.Media{})).Count(&total).Error; err != nil {
		return nil, err
	}

	var media []db.Media
	if err := apply(s.db.WithContext(ctx).Model(&db.Media{})).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&media).Error; err != nil {
		return nil, err
	}

	return &MediaListResult{Media: media, Pagination: newPagination(page, limit, total)}, nil
}

// Create records metadata for an externally hosted file.
func (s *MediaService) Create(ctx context.Context, input MediaInput) (*db.Media, error) {
	filename := strings.TrimSpace(input.Filename)
	url := strings.TrimSpace(input.URL)
	if filename == "" || url == "" {
		return nil, ErrMediaInvalid
	}

	original := strings.TrimSpace(input.OriginalName)
	if original == "" {
		original = filename
	}

	media := db.Media{
		Filename:     filename,
		OriginalName: original,
		MimeType:     strings.TrimSpace(input.MimeType),
		Size:         input.Size,
		URL:          url,
		Width:        input.Width,
		Height:       input.Height,
		UploadedBy:   input.UploadedBy,
	}
	if err := s.db.WithContext(ctx).Create(&media).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// Upload stores the bytes under a generated key, probes image dimensions and
// records the media row. The blob is removed again when the row cannot be saved.
func (s *MediaService) Upload(ctx context.Context, input UploadInput) (*db.Media, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return nil, ErrMediaTooLarge
	}
	ext := strings.ToLower(filepath.Ext(input.OriginalName))
	if !allowedUploadExtensions[ext] {
		return nil, ErrMediaType
	}

	reader := input.Reader
	if s.maxBytes > 0 {
		reader = io.LimitReader(input.Reader, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrMediaTooLarge
	}
	if len(data) == 0 {
		return nil, ErrMediaEmpty
	}

	// 以内容嗅探结果为准，客户端声明的类型不可信
	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "text/xml") {
		return nil, ErrMediaType
	}

	key := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)

	width, height := probeImageSize(data)

	url, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, err
	}

	original := strings.TrimSpace(filepath.Base(input.OriginalName))
	if original == "" || original == "." {
		original = key
	}

	media := db.Media{
		Filename:     key,
		OriginalName: original,
		MimeType:     contentType,
		Size:         int64(len(data)),
		URL:          url,
		StorageKey:   key,
		Width:        width,
		Height:       height,
		UploadedBy:   input.UploadedBy,
	}
	if err := s.db.WithContext(ctx).Create(&media).Error; err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return &media, nil
}

// Delete removes the media row and, for uploaded files, the stored blob.
// Blob removal failures are logged and do not fail the call.
func (s *MediaService) Delete(ctx context.Context, id uint) error {
	var media db.Media
	if err := s.db.WithContext(ctx).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&db.Media{}, media.ID).Error; err != nil {
		return err
	}

	if media.StorageKey != "" && s.store != nil {
		if err := s.store.Delete(ctx, media.StorageKey); err != nil {
			logger.Warn("failed to delete media blob",
				zap.Uint("media_id", media.ID),
				zap.String("backend", s.store.Name()),
				zap.String("key", media.StorageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// probeImageSize 读取图片头部获取宽高，非图片返回 0。
func probeImageSize(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
