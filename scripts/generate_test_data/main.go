package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/panlogistics/blog/internal/config"
	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/service"
)

type samplePost struct {
	title    string
	category string
	tags     []string
	status   string
	featured bool
	content  string
}

var samplePosts = []samplePost{
	{
		title:    "Air Freight vs Sea Freight: Choosing the Right Mode",
		category: "Shipping Guides",
		tags:     []string{"air-freight", "sea-freight"},
		status:   db.PostStatusPublished,
		featured: true,
		content:  "## Transit time\n\nAir freight moves in days, sea freight in weeks.\n\n## Cost\n\nSea freight is usually **far cheaper** per kilogram for heavy cargo.",
	},
	{
		title:    "Customs Clearance Checklist",
		category: "Customs",
		tags:     []string{"customs", "documentation"},
		status:   db.PostStatusPublished,
		content:  "- Commercial invoice\n- Packing list\n- Bill of lading or air waybill\n- Certificate of origin",
	},
	{
		title:    "How We Track Your Shipment",
		category: "Company News",
		tags:     []string{"tracking"},
		status:   db.PostStatusPublished,
		content:  "Every consignment receives a tracking number as soon as it is booked.",
	},
	{
		title:    "Warehouse Safety Standards",
		category: "Warehousing",
		tags:     []string{"warehousing", "safety"},
		status:   db.PostStatusDraft,
		content:  "Draft notes on racking inspections and forklift training.",
	},
	{
		title:    "Peak Season Booking Tips",
		category: "Shipping Guides",
		tags:     []string{"sea-freight", "planning"},
		status:   db.PostStatusScheduled,
		content:  "Book container space at least four weeks ahead of peak season.",
	},
}

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	created, err := seed(context.Background(), gdb, time.Now().UTC())
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}
	fmt.Printf("测试数据生成完成！新增文章 %d 篇\n", created)
}

// seed 写入示例分类、标签、文章与评论，可重复执行。
func seed(ctx context.Context, gdb *gorm.DB, now time.Time) (int, error) {
	taxonomy := service.NewTaxonomyService(gdb)
	posts := service.NewPostService(gdb)
	comments := service.NewCommentService(gdb)

	categories := map[string]bool{}
	tags := map[string]bool{}
	for _, sample := range samplePosts {
		categories[sample.category] = true
		for _, tag := range sample.tags {
			tags[tag] = true
		}
	}
	for name := range categories {
		if _, err := taxonomy.CreateCategory(ctx, service.CategoryInput{Name: name}); err != nil && !errors.Is(err, service.ErrCategoryExists) {
			return 0, fmt.Errorf("create category %s: %w", name, err)
		}
	}
	for name := range tags {
		if _, err := taxonomy.CreateTag(ctx, name, ""); err != nil && !errors.Is(err, service.ErrTagExists) {
			return 0, fmt.Errorf("create tag %s: %w", name, err)
		}
	}

	created := 0
	for _, sample := range samplePosts {
		slug := service.Slugify(sample.title)
		var existing int64
		if err := gdb.WithContext(ctx).Model(&db.Post{}).Where("slug = ?", slug).Count(&existing).Error; err != nil {
			return created, err
		}
		if existing > 0 {
			continue
		}

		input := service.PostInput{
			Title:      sample.title,
			Content:    sample.content,
			Category:   sample.category,
			Tags:       sample.tags,
			Status:     sample.status,
			IsFeatured: sample.featured,
		}
		if sample.status == db.PostStatusScheduled {
			at := now.Add(7 * 24 * time.Hour)
			input.ScheduledAt = &at
		}

		post, err := posts.Create(ctx, input)
		if err != nil {
			return created, fmt.Errorf("create post %q: %w", sample.title, err)
		}
		created++

		if post.Status == db.PostStatusPublished {
			if _, err := comments.Create(ctx, post.Slug, service.CommentInput{
				AuthorName: "Sample Reader",
				Content:    "Thanks, this was useful.",
			}); err != nil {
				return created, fmt.Errorf("create comment for %q: %w", post.Slug, err)
			}
		}
	}
	return created, nil
}
