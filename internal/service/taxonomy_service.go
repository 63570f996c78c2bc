package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/panlogistics/blog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrTagNotFound      = errors.New("tag not found")
)

// TaxonomyService wraps category and tag operations.
type TaxonomyService struct {
	db *gorm.DB
}

// CategoryInput represents fields accepted when creating a category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// NewTaxonomyService creates a TaxonomyService instance.
func NewTaxonomyService(gdb *gorm.DB) *TaxonomyService {
	return &TaxonomyService{db: gdb}
}

// ListCategories returns categories ordered by name.
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListTags returns tags ordered by name.
func (s *TaxonomyService) ListTags(ctx context.Context) ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.WithContext(ctx).Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateCategory inserts a category; name and slug must both be unused.
func (s *TaxonomyService) CreateCategory(ctx context.Context, input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	category := db.Category{
		Name:        name,
		Slug:        taxonomySlug(input.Slug, name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return &category, nil
}

// CreateTag inserts a tag; name and slug must both be unused.
func (s *TaxonomyService) CreateTag(ctx context.Context, name, slug string) (*db.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrNameRequired
	}

	tag := db.Tag{Name: trimmed, Slug: taxonomySlug(slug, trimmed)}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return &tag, nil
}

// DeleteCategory removes a category. Posts keep their category value.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteTag removes a tag. Posts keep their tag values.
func (s *TaxonomyService) DeleteTag(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Tag{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

// UsedCategories 返回文章中实际出现过的分类名，去重并排序。
func (s *TaxonomyService) UsedCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	sort.Strings(categories)
	return categories, nil
}

func taxonomySlug(slug, name string) string {
	if s := slugify(slug); s != "" {
		return s
	}
	if s := slugify(name); s != "" {
		return s
	}
	// 非 ASCII 名称保留原文作为 slug
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
