package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/panlogistics/blog/internal/service"
)

// multipartOverhead 为 multipart 边界与表头预留的额外字节。
const multipartOverhead = 1 << 20

type mediaRequest struct {
	Filename     string `json:"filename" binding:"required,max=255"`
	OriginalName string `json:"originalName" binding:"max=255"`
	MimeType     string `json:"mimeType" binding:"max=120"`
	Size         int64  `json:"size" binding:"min=0"`
	URL          string `json:"url" binding:"required,max=1024"`
	Width        int    `json:"width" binding:"min=0"`
	Height       int    `json:"height" binding:"min=0"`
}

// ListMedia 分页列出媒体库，支持按文件名搜索与 MIME 前缀筛选。
func (a *API) ListMedia(c *gin.Context) {
	result, err := a.media.List(c.Request.Context(), service.MediaFilter{
		Page:   parseIntQuery(c, "page"),
		Limit:  parseIntQuery(c, "limit"),
		Search: c.Query("search"),
		Type:   c.Query("type"),
	})
	if err != nil {
		respondFailure(c, err, "Failed to fetch media")
		return
	}
	respondPage(c, result.Media, result.Pagination)
}

// CreateMedia registers metadata for a file hosted elsewhere.
func (a *API) CreateMedia(c *gin.Context) {
	var req mediaRequest
	if !bindJSON(c, &req) {
		return
	}

	media, err := a.media.Create(c.Request.Context(), service.MediaInput{
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Size:         req.Size,
		URL:          req.URL,
		Width:        req.Width,
		Height:       req.Height,
		UploadedBy:   currentUserID(c),
	})
	if err != nil {
		respondFailure(c, err, "Failed to upload media")
		return
	}
	respondCreated(c, media, "Media uploaded successfully")
}

// UploadMedia 处理 multipart 上传，字段名为 file。
func (a *API) UploadMedia(c *gin.Context) {
	if limit := a.media.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondFailure(c, service.ErrMediaTooLarge, "Failed to upload media")
			return
		}
		respondError(c, http.StatusBadRequest, "file field is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondFailure(c, err, "Failed to read upload")
		return
	}
	defer file.Close()

	media, err := a.media.Upload(c.Request.Context(), service.UploadInput{
		Reader:       file,
		OriginalName: header.Filename,
		Size:         header.Size,
		UploadedBy:   currentUserID(c),
	})
	if err != nil {
		respondFailure(c, err, "Failed to upload media")
		return
	}
	respondCreated(c, media, "Media uploaded successfully")
}

// DeleteMedia 删除媒体记录，已上传的文件一并移除。
func (a *API) DeleteMedia(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := a.media.Delete(c.Request.Context(), id); err != nil {
		respondFailure(c, err, "Failed to delete media")
		return
	}
	respondMessage(c, "Media deleted successfully")
}
