package usecase

import (
	"context"
	"fmt"
	"strings"

	"advanced-blog/pkg/logger"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/policy"
	"advanced-blog/services/blog/internal/repo/persistent"
)

type CommentUseCase interface {
	// Submit adds a comment to a post the actor can see. Comments by admins
	// and authors are approved immediately.
	Submit(ctx context.Context, actor entity.Actor, postSlug, content string) (*entity.Comment, error)
	Approve(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error)
	Delete(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error)
	// ListPending is the moderation queue: every pending comment for admins
	// and authors, pending comments on their own posts for everyone else.
	ListPending(ctx context.Context, actor entity.Actor) ([]*entity.Comment, error)
}

type commentUseCase struct {
	commentRepo persistent.CommentRepository
	postRepo    persistent.PostRepository
	logger      *logger.Logger
}

func NewCommentUseCase(commentRepo persistent.CommentRepository, postRepo persistent.PostRepository, logger *logger.Logger) CommentUseCase {
	return &commentUseCase{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		logger:      logger,
	}
}

func (uc *commentUseCase) Submit(ctx context.Context, actor entity.Actor, postSlug, content string) (*entity.Comment, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrPermissionDenied
	}

	post, err := uc.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanPerform(actor, policy.ViewPost, policy.PostResource(post)) {
		return nil, denied(policy.ViewPost)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "This field is required.")
	}

	comment := &entity.Comment{
		PostID:       post.ID,
		PostSlug:     post.Slug,
		PostTitle:    post.Title,
		PostAuthorID: post.AuthorID,
		UserID:       actor.ID,
		Content:      content,
		IsApproved:   CommentApproval(actor.Role),
	}
	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	uc.logger.Info("Comment %s added to post %s by user %s (approved=%t)", comment.ID, post.Slug, actor.ID, comment.IsApproved)
	return comment, nil
}

func (uc *commentUseCase) Approve(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error) {
	comment, err := uc.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanPerform(actor, policy.ApproveComment, policy.CommentResource(comment)) {
		return nil, denied(policy.ApproveComment)
	}

	if err := uc.commentRepo.Approve(ctx, comment.ID); err != nil {
		return nil, fmt.Errorf("failed to approve comment: %w", notFound(err))
	}
	comment.IsApproved = true

	uc.logger.Info("Comment %s approved by user %s", comment.ID, actor.ID)
	return comment, nil
}

func (uc *commentUseCase) Delete(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error) {
	comment, err := uc.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanPerform(actor, policy.DeleteComment, policy.CommentResource(comment)) {
		return nil, denied(policy.DeleteComment)
	}

	if err := uc.commentRepo.Delete(ctx, comment.ID); err != nil {
		return nil, fmt.Errorf("failed to delete comment: %w", notFound(err))
	}

	uc.logger.Info("Comment %s deleted by user %s", comment.ID, actor.ID)
	return comment, nil
}

func (uc *commentUseCase) ListPending(ctx context.Context, actor entity.Actor) ([]*entity.Comment, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrPermissionDenied
	}

	postAuthorID := actor.ID
	if actor.Role.Privileged() {
		postAuthorID = ""
	}

	comments, err := uc.commentRepo.ListPending(ctx, postAuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending comments: %w", err)
	}
	return comments, nil
}
