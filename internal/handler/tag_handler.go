package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/panlogistics/blog/internal/service"
)

type taxonomyRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=120"`
	Description string `json:"description"`
}

// ListCategories 返回全部分类
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		respondFailure(c, err, "Failed to fetch categories")
		return
	}
	respondOK(c, categories)
}

// ListTags 返回全部标签
func (a *API) ListTags(c *gin.Context) {
	tags, err := a.taxonomy.ListTags(c.Request.Context())
	if err != nil {
		respondFailure(c, err, "Failed to fetch tags")
		return
	}
	respondOK(c, tags)
}

// ListUsedCategories returns the distinct categories referenced by posts.
func (a *API) ListUsedCategories(c *gin.Context) {
	categories, err := a.taxonomy.UsedCategories(c.Request.Context())
	if err != nil {
		respondFailure(c, err, "Failed to fetch categories")
		return
	}
	respondOK(c, categories)
}

// CreateCategory 创建分类，名称或 slug 重复时返回 409。
func (a *API) CreateCategory(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := a.taxonomy.CreateCategory(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondFailure(c, err, "Failed to create category")
		return
	}
	respondCreated(c, category, "Category created successfully")
}

// CreateTag 创建标签
func (a *API) CreateTag(c *gin.Context) {
	var req taxonomyRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := a.taxonomy.CreateTag(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondFailure(c, err, "Failed to create tag")
		return
	}
	respondCreated(c, tag, "Tag created successfully")
}

// DeleteCategory 删除分类，已引用该分类的文章保持不变。
func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := a.taxonomy.DeleteCategory(c.Request.Context(), id); err != nil {
		respondFailure(c, err, "Failed to delete category")
		return
	}
	respondMessage(c, "Category deleted successfully")
}

// DeleteTag 删除标签
func (a *API) DeleteTag(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := a.taxonomy.DeleteTag(c.Request.Context(), id); err != nil {
		respondFailure(c, err, "Failed to delete tag")
		return
	}
	respondMessage(c, "Tag deleted successfully")
}
