package entity

import "time"

type Comment struct {
	ID           string    `json:"id"`
	PostID       string    `json:"post_id"`
	PostSlug     string    `json:"post_slug,omitempty"`
	PostTitle    string    `json:"post_title,omitempty"`
	PostAuthorID string    `json:"-"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	Content      string    `json:"content"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
