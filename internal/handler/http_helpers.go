package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/panlogistics/blog/internal/logger"
	"github.com/panlogistics/blog/internal/service"
)

// envelope 是所有 JSON 响应共用的外层结构。
type envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}

func respondUpdated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

func respondPage(c *gin.Context, data any, pagination service.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &pagination})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message, Error: message})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrRevisionNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrMediaNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrTagExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrScheduleRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrMediaInvalid),
		errors.Is(err, service.ErrMediaEmpty),
		errors.Is(err, service.ErrMediaType),
		errors.Is(err, service.ErrCommentInvalid),
		errors.Is(err, service.ErrInvalidCommentStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCommentsClosed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrMediaTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure 把服务层错误转换为 HTTP 响应。已知错误直接回显，其余返回 500 并记录日志。
func respondFailure(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(message,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, envelope{Success: false, Message: message, Error: err.Error()})
		return
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: err.Error(), Error: err.Error()})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, describeBindingError(err))
		return false
	}
	return true
}

// describeBindingError turns validator output into a short readable message.
func describeBindingError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "slug":
			parts = append(parts, fmt.Sprintf("%s must contain only lowercase letters, digits and hyphens", field))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid %s", key))
		return 0, false
	}
	return uint(id), true
}

func parseIntQuery(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func parseBoolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}
