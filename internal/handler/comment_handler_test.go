package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/service"
)

func TestSubmitCommentLifecycle(t *testing.T) {
	api, _ := setupTestAPI(t)
	post := seedPost(t, api, service.PostInput{Title: "Customs Checklist", Status: db.PostStatusPublished})

	c, w := newTestContext(http.MethodPost, "/api/blog/post/customs-checklist/comments", map[string]any{
		"author_name":  "Mei",
		"author_email": "mei@example.com",
		"content":      "Very helpful",
	})
	c.Params = gin.Params{{Key: "slug", Value: "customs-checklist"}}
	api.SubmitComment(c)

	expectStatus(t, w, http.StatusCreated)
	var comment db.Comment
	decodeEnvelope(t, w, &comment)
	if comment.Status != db.CommentStatusPending || comment.PostID != post.ID {
		t.Fatalf("unexpected comment %+v", comment)
	}

	commentID := strconv.Itoa(int(comment.ID))
	c, w = newTestContext(http.MethodPut, "/api/blog/admin/comments/"+commentID, map[string]any{"status": "approved"})
	c.Params = gin.Params{{Key: "commentId", Value: commentID}}
	api.UpdateComment(c)
	expectStatus(t, w, http.StatusOK)

	postID := strconv.Itoa(int(post.ID))
	c, w = newTestContext(http.MethodGet, "/api/blog/admin/posts/"+postID+"/comments?status=approved", nil)
	c.Params = gin.Params{{Key: "id", Value: postID}}
	api.ListComments(c)
	expectStatus(t, w, http.StatusOK)
	var approved []db.Comment
	decodeEnvelope(t, w, &approved)
	if len(approved) != 1 || approved[0].ID != comment.ID {
		t.Fatalf("expected the approved comment, got %+v", approved)
	}

	c, w = newTestContext(http.MethodDelete, "/api/blog/admin/comments/"+commentID, nil)
	c.Params = gin.Params{{Key: "commentId", Value: commentID}}
	api.DeleteComment(c)
	expectStatus(t, w, http.StatusOK)

	c, w = newTestContext(http.MethodDelete, "/api/blog/admin/comments/"+commentID, nil)
	c.Params = gin.Params{{Key: "commentId", Value: commentID}}
	api.DeleteComment(c)
	expectStatus(t, w, http.StatusNotFound)
}

func TestSubmitCommentRejections(t *testing.T) {
	api, _ := setupTestAPI(t)
	closed := false
	seedPost(t, api, service.PostInput{Title: "Closed", Status: db.PostStatusPublished, AllowComments: &closed})

	tests := []struct {
		name    string
		slug    string
		payload map[string]any
		status  int
	}{
		{name: "comments closed", slug: "closed", payload: map[string]any{"author_name": "A", "content": "hi"}, status: http.StatusForbidden},
		{name: "unknown post", slug: "missing", payload: map[string]any{"author_name": "A", "content": "hi"}, status: http.StatusNotFound},
		{name: "missing content", slug: "closed", payload: map[string]any{"author_name": "A"}, status: http.StatusBadRequest},
		{name: "bad email", slug: "closed", payload: map[string]any{"author_name": "A", "author_email": "nope", "content": "hi"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodPost, "/api/blog/post/"+tt.slug+"/comments", tt.payload)
			c.Params = gin.Params{{Key: "slug", Value: tt.slug}}
			api.SubmitComment(c)
			expectStatus(t, w, tt.status)
		})
	}
}

func TestUpdateCommentRejectsUnknownStatus(t *testing.T) {
	api, _ := setupTestAPI(t)

	c, w := newTestContext(http.MethodPut, "/api/blog/admin/comments/1", map[string]any{"status": "deleted"})
	c.Params = gin.Params{{Key: "commentId", Value: "1"}}
	api.UpdateComment(c)

	expectStatus(t, w, http.StatusBadRequest)
	if env := decodeEnvelope(t, w, nil); env.Error != "status must be one of pending approved rejected spam" {
		t.Fatalf("unexpected validation message %q", env.Error)
	}
}
