package service

import (
	"context"
	"errors"
	"testing"

	"github.com/panlogistics/blog/internal/db"
)

func TestCommentService_CreateAndModerate(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-moderate")
	clock := newTestClock()
	posts := NewPostService(gdb).WithClock(clock.Now)
	svc := NewCommentService(gdb).WithClock(clock.Now)
	ctx := context.Background()

	post, err := posts.Create(ctx, PostInput{Title: "Open Thread", Status: db.PostStatusPublished})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	first, err := svc.Create(ctx, "open-thread", CommentInput{AuthorName: " Ana ", AuthorEmail: "ana@example.com", Content: "Great read"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if first.Status != db.CommentStatusPending || first.PostID != post.ID || first.AuthorName != "Ana" {
		t.Fatalf("unexpected comment %+v", first)
	}
	second, err := svc.Create(ctx, "open-thread", CommentInput{AuthorName: "Ben", Content: "Spam link"})
	if err != nil {
		t.Fatalf("create second comment: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, first.ID, db.CommentStatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, second.ID, "deleted"); !errors.Is(err, ErrInvalidCommentStatus) {
		t.Fatalf("expected ErrInvalidCommentStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, 999, db.CommentStatusSpam); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}

	all, err := svc.ListForPost(ctx, post.ID, "all")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	approved, err := svc.ListForPost(ctx, post.ID, db.CommentStatusApproved)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != first.ID {
		t.Fatalf("unexpected approved comments %+v", approved)
	}

	if err := svc.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, second.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestCommentService_CreateRejections(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-rejections")
	clock := newTestClock()
	posts := NewPostService(gdb).WithClock(clock.Now)
	svc := NewCommentService(gdb).WithClock(clock.Now)
	ctx := context.Background()

	if _, err := posts.Create(ctx, PostInput{Title: "Closed", Status: db.PostStatusPublished, AllowComments: boolPtr(false)}); err != nil {
		t.Fatalf("create closed: %v", err)
	}
	if _, err := posts.Create(ctx, PostInput{Title: "Hidden"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := svc.Create(ctx, "closed", CommentInput{AuthorName: "Ana", Content: "hi"}); !errors.Is(err, ErrCommentsClosed) {
		t.Fatalf("expected ErrCommentsClosed, got %v", err)
	}
	if _, err := svc.Create(ctx, "hidden", CommentInput{AuthorName: "Ana", Content: "hi"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected drafts to reject comments, got %v", err)
	}
	if _, err := svc.Create(ctx, "closed", CommentInput{AuthorName: " ", Content: "hi"}); !errors.Is(err, ErrCommentInvalid) {
		t.Fatalf("expected ErrCommentInvalid, got %v", err)
	}
}
