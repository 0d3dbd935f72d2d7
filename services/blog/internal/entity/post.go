package entity

import (
	"strings"
	"time"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Statuses lists the choices offered on the post form.
var Statuses = []PostStatus{StatusDraft, StatusPublished}

func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	AuthorID         string     `json:"author_id"`
	AuthorUsername   string     `json:"author_username,omitempty"`
	CategoryID       *string    `json:"category_id"`
	Category         *Category  `json:"category,omitempty"`
	Tags             []Tag      `json:"tags"`
	Content          string     `json:"content"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Status           PostStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// TagsInput renders the tag names the way the edit form expects them.
func (p *Post) TagsInput() string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
