package persistent

import (
	"advanced-blog/pkg/models"
	"advanced-blog/services/blog/internal/entity"
)

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:               m.ID,
		Title:            m.Title,
		Slug:             m.Slug,
		AuthorID:         m.AuthorID,
		CategoryID:       m.CategoryID,
		Category:         ToCategoryEntity(m.Category),
		Tags:             make([]entity.Tag, 0, len(m.Tags)),
		Content:          m.Content,
		FeaturedImageURL: m.FeaturedImageURL,
		Status:           entity.PostStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Author != nil {
		post.AuthorUsername = m.Author.Username
	}
	for i := range m.Tags {
		post.Tags = append(post.Tags, *ToTagEntity(&m.Tags[i]))
	}
	return post
}

// ToPostModel maps the scalar columns. Tags are written through the
// association, never through this model.
func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	return &models.Post{
		ID:               e.ID,
		Title:            e.Title,
		Slug:             e.Slug,
		AuthorID:         e.AuthorID,
		CategoryID:       e.CategoryID,
		Content:          e.Content,
		FeaturedImageURL: e.FeaturedImageURL,
		Status:           models.PostStatus(e.Status),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toTagModels(tags []entity.Tag) []models.Tag {
	out := make([]models.Tag, len(tags))
	for i, t := range tags {
		out[i] = models.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
	}
	return out
}

func ToCategoryEntity(m *models.Category) *entity.Category {
	if m == nil {
		return nil
	}

	return &entity.Category{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		CreatedAt: m.CreatedAt,
	}
}

func ToTagEntity(m *models.Tag) *entity.Tag {
	if m == nil {
		return nil
	}

	return &entity.Tag{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		CreatedAt: m.CreatedAt,
	}
}

func ToCommentEntity(m *models.Comment) *entity.Comment {
	if m == nil {
		return nil
	}

	comment := &entity.Comment{
		ID:         m.ID,
		PostID:     m.PostID,
		UserID:     m.UserID,
		Content:    m.Content,
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Post != nil {
		comment.PostSlug = m.Post.Slug
		comment.PostTitle = m.Post.Title
		comment.PostAuthorID = m.Post.AuthorID
	}
	if m.User != nil {
		comment.Username = m.User.Username
	}
	return comment
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	if e == nil {
		return nil
	}

	return &models.Comment{
		ID:         e.ID,
		PostID:     e.PostID,
		UserID:     e.UserID,
		Content:    e.Content,
		IsApproved: e.IsApproved,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:       m.ID,
		Username: m.Username,
		Role:     m.Role,
		IsActive: m.IsActive,
	}
}
