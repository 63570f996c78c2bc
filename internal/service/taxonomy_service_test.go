package service

import (
	"context"
	"errors"
	"testing"

	"github.com/panlogistics/blog/internal/db"
)

func TestTaxonomyService_Categories(t *testing.T) {
	gdb := setupServiceTestDB(t, "taxonomy-categories")
	svc := NewTaxonomyService(gdb)
	ctx := context.Background()

	sea, err := svc.CreateCategory(ctx, CategoryInput{Name: " Sea Freight ", Description: "ocean"})
	if err != nil {
		t.Fatalf("create sea: %v", err)
	}
	if sea.Name != "Sea Freight" || sea.Slug != "sea-freight" {
		t.Fatalf("unexpected category %+v", sea)
	}
	if _, err := svc.CreateCategory(ctx, CategoryInput{Name: "Air", Slug: "Air Cargo"}); err != nil {
		t.Fatalf("create air: %v", err)
	}

	if _, err := svc.CreateCategory(ctx, CategoryInput{Name: "Sea Freight"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, CategoryInput{Name: "Other", Slug: "sea-freight"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected slug conflict to be ErrCategoryExists, got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, CategoryInput{Name: "  "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Air" || categories[0].Slug != "air-cargo" {
		t.Fatalf("unexpected categories %+v", categories)
	}

	if err := svc.DeleteCategory(ctx, sea.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteCategory(ctx, sea.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestTaxonomyService_Tags(t *testing.T) {
	gdb := setupServiceTestDB(t, "taxonomy-tags")
	svc := NewTaxonomyService(gdb)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "Customs", "")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if tag.Slug != "customs" {
		t.Fatalf("unexpected slug %q", tag.Slug)
	}
	if _, err := svc.CreateTag(ctx, "Customs", ""); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}
	chinese, err := svc.CreateTag(ctx, "清关 指南", "")
	if err != nil {
		t.Fatalf("create non-ascii tag: %v", err)
	}
	if chinese.Slug != "清关-指南" {
		t.Fatalf("unexpected non-ascii slug %q", chinese.Slug)
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "Customs" {
		t.Fatalf("unexpected tags %+v", tags)
	}

	if err := svc.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	if err := svc.DeleteTag(ctx, tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestTaxonomyService_UsedCategories(t *testing.T) {
	gdb := setupServiceTestDB(t, "taxonomy-used")
	svc := NewTaxonomyService(gdb)
	posts := NewPostService(gdb)
	ctx := context.Background()

	for _, input := range []PostInput{
		{Title: "One", Category: "sea"},
		{Title: "Two", Category: "air"},
		{Title: "Three", Category: "sea"},
		{Title: "Four"},
	} {
		if _, err := posts.Create(ctx, input); err != nil {
			t.Fatalf("create %s: %v", input.Title, err)
		}
	}

	used, err := svc.UsedCategories(ctx)
	if err != nil {
		t.Fatalf("used categories: %v", err)
	}
	if len(used) != 2 || used[0] != "air" || used[1] != "sea" {
		t.Fatalf("unexpected used categories %v", used)
	}

	var count int64
	gdb.Model(&db.Category{}).Count(&count)
	if count != 0 {
		t.Fatalf("used categories must not create category rows")
	}
}
