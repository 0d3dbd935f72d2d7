package policy

import (
	"testing"

	"advanced-blog/pkg/roles"
	"advanced-blog/services/blog/internal/entity"

	"github.com/stretchr/testify/assert"
)

var (
	admin      = entity.Actor{ID: "admin-1", Role: roles.Admin}
	author     = entity.Actor{ID: "author-1", Role: roles.Author}
	other      = entity.Actor{ID: "author-2", Role: roles.Author}
	reader     = entity.Actor{ID: "reader-1", Role: roles.Reader}
	anon       = entity.Anonymous()
	draft      = Resource{OwnerID: "author-1"}
	live       = Resource{OwnerID: "author-1", Published: true}
	readerPost = Resource{OwnerID: "reader-1"}
)

func TestCanPerform_Table(t *testing.T) {
	tests := []struct {
		name   string
		actor  entity.Actor
		action Action
		res    Resource
		want   bool
	}{
		{"admin creates post", admin, CreatePost, Resource{}, true},
		{"author creates post", author, CreatePost, Resource{}, true},
		{"reader cannot create post", reader, CreatePost, Resource{}, false},
		{"anonymous cannot create post", anon, CreatePost, Resource{}, false},

		{"owner edits post", author, EditPost, draft, true},
		{"admin edits any post", admin, EditPost, draft, true},
		{"other author cannot edit", other, EditPost, draft, false},
		{"reader cannot edit", reader, EditPost, live, false},
		{"owner deletes post", author, DeletePost, live, true},
		{"other author cannot delete", other, DeletePost, live, false},
		{"anonymous cannot delete", anon, DeletePost, live, false},

		{"anyone views published", anon, ViewPost, live, true},
		{"reader views published", reader, ViewPost, live, true},
		{"owner views draft", author, ViewPost, draft, true},
		{"admin views draft", admin, ViewPost, draft, true},
		{"other author cannot view draft", other, ViewPost, draft, false},
		{"anonymous cannot view draft", anon, ViewPost, draft, false},

		{"post owner approves", author, ApproveComment, draft, true},
		{"any author approves", other, ApproveComment, live, true},
		{"admin approves", admin, ApproveComment, live, true},
		{"reader cannot approve", reader, ApproveComment, live, false},
		{"reader owner approves", reader, ApproveComment, readerPost, true},
		{"anonymous cannot approve", anon, ApproveComment, live, false},

		{"post owner deletes comment", author, DeleteComment, live, true},
		{"admin deletes comment", admin, DeleteComment, live, true},
		{"other author cannot delete comment", other, DeleteComment, live, false},
		{"reader cannot delete comment", reader, DeleteComment, live, false},

		{"admin manages categories", admin, ManageCategories, Resource{}, true},
		{"author cannot manage categories", author, ManageCategories, Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.actor, tt.action, tt.res))
		})
	}
}

func TestCanPerform_EmptyOwnerIsNobody(t *testing.T) {
	// an actor with an empty id is anonymous, never the owner of an orphan
	assert.False(t, CanPerform(entity.Actor{Role: roles.Admin}, EditPost, Resource{}))
	assert.False(t, CanPerform(other, EditPost, Resource{}))
}

func TestResources(t *testing.T) {
	post := &entity.Post{AuthorID: "author-1", Status: entity.StatusPublished}
	assert.Equal(t, live, PostResource(post))

	comment := &entity.Comment{PostAuthorID: "author-1"}
	assert.Equal(t, draft, CommentResource(comment))

	assert.Equal(t, Resource{}, PostResource(nil))
	assert.Equal(t, Resource{}, CommentResource(nil))
}

func TestWarning(t *testing.T) {
	assert.Equal(t, "You do not have permission to create posts.", Warning(CreatePost))
	assert.Equal(t, "You do not have permission to do that.", Warning(Action("unknown")))
}
