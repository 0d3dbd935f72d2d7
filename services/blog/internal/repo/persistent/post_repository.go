package persistent

import (
	"context"
	"errors"
	"strings"

	"advanced-blog/pkg/models"
	"advanced-blog/services/blog/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a listing. Zero fields do not filter.
type PostFilter struct {
	Status     entity.PostStatus
	AuthorID   string
	CategoryID string
	TagID      string
	// Query matches title or content, case-insensitively.
	Query string
}

type PostRepository interface {
	// Save creates or updates the post and replaces its tag set. It returns
	// the status stored before the write, or nil when there was no row.
	Save(ctx context.Context, post *entity.Post) (*entity.PostStatus, error)
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*entity.Post, int64, error)
	// Delete removes the post together with its comments and tag links.
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Save(ctx context.Context, post *entity.Post) (*entity.PostStatus, error) {
	var prev *entity.PostStatus
	postModel := ToPostModel(post)
	tags := toTagModels(post.Tags)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if postModel.ID != "" {
			var stored models.Post
			err := tx.Select("status").Where("id = ?", postModel.ID).First(&stored).Error
			switch {
			case err == nil:
				status := entity.PostStatus(stored.Status)
				prev = &status
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(postModel).Error; err != nil {
			return err
		}

		tagsAssoc := tx.Model(postModel).Association("Tags")
		if len(tags) == 0 {
			return tagsAssoc.Clear()
		}
		return tagsAssoc.Replace(tags)
	})
	if err != nil {
		return nil, err
	}

	post.ID = postModel.ID
	post.CreatedAt = postModel.CreatedAt
	post.UpdatedAt = postModel.UpdatedAt
	return prev, nil
}

func (r *postRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("Category").Preload("Tags")
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var postModel models.Post
	if err := r.preloaded(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var postModel models.Post
	if err := r.preloaded(ctx).Where("slug = ?", slug).First(&postModel).Error; err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyPostFilter(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("posts.status = ?", string(filter.Status))
	}
	if filter.AuthorID != "" {
		query = query.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.CategoryID != "" {
		query = query.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.TagID != "" {
		query = query.Joins("JOIN post_tags ON post_tags.post_id = posts.id AND post_tags.tag_id = ?", filter.TagID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?)", pattern, pattern)
	}
	return query
}

// List returns matching posts newest first together with the total number of
// matches ignoring limit and offset. A limit of zero returns everything.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*entity.Post, int64, error) {
	var total int64
	err := applyPostFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	query := applyPostFilter(r.preloaded(ctx).Model(&models.Post{}), filter).Order("posts.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var postModels []models.Post
	if err := query.Find(&postModels).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, total, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		postModel := &models.Post{ID: id}
		if err := tx.Model(postModel).Association("Tags").Clear(); err != nil {
			return err
		}

		result := tx.Delete(postModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
