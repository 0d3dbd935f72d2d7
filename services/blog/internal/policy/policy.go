// Package policy decides which actor may do what to posts, comments and
// categories. Every function here is pure.
package policy

import (
	"advanced-blog/pkg/roles"
	"advanced-blog/services/blog/internal/entity"
)

type Action string

const (
	CreatePost       Action = "create_post"
	EditPost         Action = "edit_post"
	DeletePost       Action = "delete_post"
	ViewPost         Action = "view_post"
	ApproveComment   Action = "approve_comment"
	DeleteComment    Action = "delete_comment"
	ManageCategories Action = "manage_categories"
)

// Resource is what an action targets. OwnerID is the post's author, also for
// comments.
type Resource struct {
	OwnerID   string
	Published bool
}

func PostResource(p *entity.Post) Resource {
	if p == nil {
		return Resource{}
	}
	return Resource{OwnerID: p.AuthorID, Published: p.IsPublished()}
}

func CommentResource(c *entity.Comment) Resource {
	if c == nil {
		return Resource{}
	}
	return Resource{OwnerID: c.PostAuthorID}
}

// CanPerform reports whether actor may perform action on res. Anonymous
// actors may only view published posts.
func CanPerform(actor entity.Actor, action Action, res Resource) bool {
	if action == ViewPost && res.Published {
		return true
	}
	if !actor.IsAuthenticated() {
		return false
	}

	owner := res.OwnerID != "" && actor.ID == res.OwnerID
	admin := actor.Role == roles.Admin

	switch action {
	case CreatePost:
		return actor.Role.Privileged()
	case EditPost, DeletePost, ViewPost, DeleteComment:
		return owner || admin
	case ApproveComment:
		return owner || actor.Role.Privileged()
	case ManageCategories:
		return admin
	}
	return false
}

// Warning is the message shown to an authenticated actor who was refused.
func Warning(action Action) string {
	switch action {
	case CreatePost:
		return "You do not have permission to create posts."
	case EditPost:
		return "You do not have permission to edit this post."
	case DeletePost:
		return "You do not have permission to delete this post."
	case ViewPost:
		return "You do not have permission to view this post."
	case ApproveComment:
		return "You do not have permission to approve this comment."
	case DeleteComment:
		return "You do not have permission to delete this comment."
	case ManageCategories:
		return "You do not have permission to manage categories."
	}
	return "You do not have permission to do that."
}
