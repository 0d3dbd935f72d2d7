package persistent

import (
	"context"

	"advanced-blog/pkg/models"
	"advanced-blog/services/blog/internal/entity"

	"gorm.io/gorm"
)

type TaxonomyRepository interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*entity.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CreateCategory(ctx context.Context, category *entity.Category) error
	GetTagBySlug(ctx context.Context, slug string) (*entity.Tag, error)
	// GetOrCreateTag returns the tag with the given slug, creating it with
	// name when it does not exist yet.
	GetOrCreateTag(ctx context.Context, name, slug string) (*entity.Tag, error)
}

type taxonomyRepository struct {
	db *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	var categoryModels []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categoryModels).Error; err != nil {
		return nil, err
	}

	categories := make([]*entity.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = ToCategoryEntity(&categoryModels[i])
	}
	return categories, nil
}

func (r *taxonomyRepository) GetCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	var categoryModel models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&categoryModel).Error; err != nil {
		return nil, err
	}
	return ToCategoryEntity(&categoryModel), nil
}

func (r *taxonomyRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var categoryModel models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&categoryModel).Error; err != nil {
		return nil, err
	}
	return ToCategoryEntity(&categoryModel), nil
}

func (r *taxonomyRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taxonomyRepository) CreateCategory(ctx context.Context, category *entity.Category) error {
	categoryModel := &models.Category{Name: category.Name, Slug: category.Slug}
	if err := r.db.WithContext(ctx).Create(categoryModel).Error; err != nil {
		return err
	}
	*category = *ToCategoryEntity(categoryModel)
	return nil
}

func (r *taxonomyRepository) GetTagBySlug(ctx context.Context, slug string) (*entity.Tag, error) {
	var tagModel models.Tag
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tagModel).Error; err != nil {
		return nil, err
	}
	return ToTagEntity(&tagModel), nil
}

func (r *taxonomyRepository) GetOrCreateTag(ctx context.Context, name, slug string) (*entity.Tag, error) {
	var tagModel models.Tag
	err := r.db.WithContext(ctx).
		Where(models.Tag{Slug: slug}).
		Attrs(models.Tag{Name: name}).
		FirstOrCreate(&tagModel).Error
	if err != nil {
		return nil, err
	}
	return ToTagEntity(&tagModel), nil
}
