package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/slug"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/policy"
	"advanced-blog/services/blog/internal/repo/persistent"
)

const maxCategoryNameLength = 100

type CategoryUseCase interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	CreateCategory(ctx context.Context, actor entity.Actor, name string) (*entity.Category, error)
}

type categoryUseCase struct {
	taxonomyRepo persistent.TaxonomyRepository
	logger       *logger.Logger
}

func NewCategoryUseCase(taxonomyRepo persistent.TaxonomyRepository, logger *logger.Logger) CategoryUseCase {
	return &categoryUseCase{
		taxonomyRepo: taxonomyRepo,
		logger:       logger,
	}
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := uc.taxonomyRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, actor entity.Actor, name string) (*entity.Category, error) {
	if !policy.CanPerform(actor, policy.ManageCategories, policy.Resource{}) {
		return nil, denied(policy.ManageCategories)
	}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, invalid("name", "This field is required.")
	case utf8.RuneCountInString(name) > maxCategoryNameLength:
		return nil, invalid("name", fmt.Sprintf("Ensure this value has at most %d characters.", maxCategoryNameLength))
	}

	base := slug.Make(name)
	if base == "" {
		return nil, invalid("name", "Enter a name containing letters or numbers.")
	}
	categorySlug, err := slug.Unique(base, func(candidate string) (bool, error) {
		return uc.taxonomyRepo.CategorySlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate slug: %w", err)
	}

	category := &entity.Category{Name: name, Slug: categorySlug}
	if err := uc.taxonomyRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	uc.logger.Info("Category %s created by user %s", category.Slug, actor.ID)
	return category, nil
}
