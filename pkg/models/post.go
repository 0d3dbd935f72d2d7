package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

type Post struct {
	ID               string     `gorm:"type:uuid;primary_key" json:"id"`
	Title            string     `gorm:"type:varchar(200);not null" json:"title"`
	Slug             string     `gorm:"type:varchar(250);uniqueIndex;not null" json:"slug"`
	AuthorID         string     `gorm:"type:uuid;not null;index" json:"author_id"`
	Author           *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID       *string    `gorm:"type:uuid;index" json:"category_id"`
	Category         *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags             []Tag      `gorm:"many2many:post_tags" json:"tags"`
	Content          string     `gorm:"type:text" json:"content"`
	FeaturedImageURL string     `gorm:"type:varchar(500)" json:"featured_image_url"`
	Status           PostStatus `gorm:"type:varchar(10);default:'draft';index" json:"status"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

type Category struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type Tag struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
