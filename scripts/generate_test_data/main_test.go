package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/panlogistics/blog/internal/db"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeedIsIdempotent(t *testing.T) {
	gdb := setupSeedTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := seed(ctx, gdb, now)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != len(samplePosts) {
		t.Fatalf("expected %d posts, got %d", len(samplePosts), created)
	}

	again, err := seed(ctx, gdb, now)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected second run to add nothing, added %d", again)
	}

	var posts, comments, published int64
	gdb.Model(&db.Post{}).Count(&posts)
	gdb.Model(&db.Comment{}).Count(&comments)
	gdb.Model(&db.Post{}).Where("status = ?", db.PostStatusPublished).Count(&published)
	if posts != int64(len(samplePosts)) {
		t.Fatalf("expected %d stored posts, got %d", len(samplePosts), posts)
	}
	if comments != published {
		t.Fatalf("expected one comment per published post, got %d comments for %d posts", comments, published)
	}

	var scheduled db.Post
	if err := gdb.Where("status = ?", db.PostStatusScheduled).First(&scheduled).Error; err != nil {
		t.Fatalf("load scheduled post: %v", err)
	}
	if scheduled.ScheduledAt == nil || scheduled.PublishedAt != nil {
		t.Fatalf("scheduled post must carry scheduled_at only, got %+v", scheduled)
	}
}
