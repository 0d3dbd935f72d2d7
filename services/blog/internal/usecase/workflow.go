package usecase

import (
	"advanced-blog/pkg/roles"
	"advanced-blog/services/blog/internal/entity"
)

// PublishTransition reports whether a save moving a post from prev to next
// publishes it. prev is nil for a post that had no stored row.
func PublishTransition(prev *entity.PostStatus, next entity.PostStatus) bool {
	if next != entity.StatusPublished {
		return false
	}
	return prev == nil || *prev != entity.StatusPublished
}

// CommentApproval decides is_approved for a new comment. It only looks at the
// submitter's role, not at whose post is being commented on.
func CommentApproval(role roles.Role) bool {
	return role == roles.Admin || role == roles.Author
}
