package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/panlogistics/blog/internal/service"
)

type commentRequest struct {
	AuthorName  string `json:"author_name" binding:"required,max=120"`
	AuthorEmail string `json:"author_email" binding:"omitempty,email,max=255"`
	Content     string `json:"content" binding:"required"`
}

type commentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected spam"`
}

// SubmitComment 提交评论，进入待审核状态。
func (a *API) SubmitComment(c *gin.Context) {
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := a.comments.Create(c.Request.Context(), c.Param("slug"), service.CommentInput{
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     req.Content,
	})
	if err != nil {
		respondFailure(c, err, "Failed to submit comment")
		return
	}
	respondCreated(c, comment, "Comment submitted for moderation")
}

// ListComments 按状态列出某篇文章的评论，默认 all。
func (a *API) ListComments(c *gin.Context) {
	postID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	comments, err := a.comments.ListForPost(c.Request.Context(), postID, c.DefaultQuery("status", "all"))
	if err != nil {
		respondFailure(c, err, "Failed to fetch comments")
		return
	}
	respondOK(c, comments)
}

// UpdateComment sets the moderation status of a comment.
func (a *API) UpdateComment(c *gin.Context) {
	id, ok := parseUintParam(c, "commentId")
	if !ok {
		return
	}

	var req commentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := a.comments.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondFailure(c, err, "Failed to update comment")
		return
	}
	respondUpdated(c, comment, "Comment updated successfully")
}

// DeleteComment 删除评论
func (a *API) DeleteComment(c *gin.Context) {
	id, ok := parseUintParam(c, "commentId")
	if !ok {
		return
	}

	if err := a.comments.Delete(c.Request.Context(), id); err != nil {
		respondFailure(c, err, "Failed to delete comment")
		return
	}
	respondMessage(c, "Comment deleted successfully")
}
