package persistent

import (
	"context"

	"advanced-blog/pkg/models"
	"advanced-blog/services/blog/internal/entity"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	ListApprovedByPost(ctx context.Context, postID string) ([]*entity.Comment, error)
	// ListPending returns unapproved comments, oldest first. A non-empty
	// postAuthorID limits them to that author's posts.
	ListPending(ctx context.Context, postAuthorID string) ([]*entity.Comment, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if err := r.db.WithContext(ctx).Create(commentModel).Error; err != nil {
		return err
	}
	comment.ID = commentModel.ID
	comment.CreatedAt = commentModel.CreatedAt
	comment.UpdatedAt = commentModel.UpdatedAt
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	var commentModel models.Comment
	err := r.db.WithContext(ctx).Preload("Post").Preload("User").Where("id = ?", id).First(&commentModel).Error
	if err != nil {
		return nil, err
	}
	return ToCommentEntity(&commentModel), nil
}

func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID string) ([]*entity.Comment, error) {
	var commentModels []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at DESC").
		Find(&commentModels).Error
	if err != nil {
		return nil, err
	}
	return toCommentEntities(commentModels), nil
}

func (r *commentRepository) ListPending(ctx context.Context, postAuthorID string) ([]*entity.Comment, error) {
	query := r.db.WithContext(ctx).
		Preload("Post").
		Preload("User").
		Where("comments.is_approved = ?", false)
	if postAuthorID != "" {
		query = query.Joins("JOIN posts ON posts.id = comments.post_id").Where("posts.author_id = ?", postAuthorID)
	}

	var commentModels []models.Comment
	if err := query.Order("comments.created_at ASC").Find(&commentModels).Error; err != nil {
		return nil, err
	}
	return toCommentEntities(commentModels), nil
}

func (r *commentRepository) Approve(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_approved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func toCommentEntities(commentModels []models.Comment) []*entity.Comment {
	comments := make([]*entity.Comment, len(commentModels))
	for i := range commentModels {
		comments[i] = ToCommentEntity(&commentModels[i])
	}
	return comments
}
